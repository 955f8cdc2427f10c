// Package service is the command surface of the timer service.
//
// A Service owns a timer registry and an outbound event channel. Commands
// (Make, Delete, Start, Reset, Get, List) run on the caller's goroutine and
// return immediately. Starting a timer launches a tick task on a bounded
// worker pool; the task advances the timer at a fixed rate, publishes a
// "timer-update" event after every tick that leaves the timer running and a
// single "timer-done" event when the timer completes.
//
// At most one tick task is effective per timer. Restarting, resetting or
// deleting a timer stops the task of the previous run before it can publish
// again.
//
// Example usage:
//
//	hub := event.NewHub()
//	sub := hub.Subscribe(0)
//
//	svc, err := service.New(hub, service.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	t := svc.Make(5*time.Second, "tea")
//	if _, err := svc.Start(t.ID()); err != nil {
//		return err
//	}
//	for e := range sub.C() {
//		if e.Kind == event.KindDone {
//			break
//		}
//	}
package service
