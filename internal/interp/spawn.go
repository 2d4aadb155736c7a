package interp

import (
	"fmt"
	"sync/atomic"

	"github.com/rask-lang/rask-sub001/internal/ast"
)

// ThreadHandle is the result of `spawn`/`Thread.spawn`/`ThreadPool.spawn`
// outside any `using Multitasking`/`Async` context: real OS-thread
// concurrency via a goroutine, joined through a one-shot channel
// (§4.13, §5).
type ThreadHandle struct {
	done      chan threadResult
	cancelled int32
}

type threadResult struct {
	value Value
	err   error
}

// TaskHandle is the green-task handle: a result channel plus the
// cancellation bit §5 specifies tasks (not OS threads) check at their
// yield points. The interpreter has no cooperative scheduler, and
// evalSpawn returns a ThreadHandle in every context, including inside a
// Multitasking/Async capability scope, so no spawn here produces a
// TaskHandle.
type TaskHandle struct {
	done      chan threadResult
	cancelled int32
}

// Cancel sets the cancellation bit a spawned task checks at its next
// yield point (§5: "cancellation via cancel() + rask_green_task_is_cancelled").
func (t *TaskHandle) Cancel() { atomic.StoreInt32(&t.cancelled, 1) }

// IsCancelled backs `rask_green_task_is_cancelled`.
func (t *TaskHandle) IsCancelled() bool { return atomic.LoadInt32(&t.cancelled) != 0 }

func (in *Interp) evalSpawn(env *Env, n *ast.SpawnExpr) (Value, signal, error) {
	clone := in.clone()
	// The spawned task's environment is a fresh root chained to a
	// snapshot of the creating scope: further mutation of the parent's
	// own locals after spawning must not retroactively change what the
	// task sees, matching an OS thread's independent stack.
	capturedEnv := snapshotEnv(env)

	th := &ThreadHandle{done: make(chan threadResult, 1)}
	go func() {
		rs := newResourceScope(nil)
		v, sig, err := clone.eval(capturedEnv, rs, n.Body)
		if err == nil && sig.kind == sigReturn {
			v = sig.value
		}
		th.done <- threadResult{value: v, err: err}
	}()
	return Value{Kind: KindThreadHandle, Thread: th}, noSignal, nil
}

// snapshotEnv copies every binding reachable from env into one flat
// scope, so a spawned goroutine never shares a *Value cell with the
// spawning scope (no data race on a `mut` local the parent keeps
// writing to after spawn returns).
func snapshotEnv(env *Env) *Env {
	flat := NewEnv(nil)
	var walk func(*Env)
	walk = func(e *Env) {
		if e == nil {
			return
		}
		walk(e.parent)
		for name, v := range e.vars {
			flat.Define(name, *v)
		}
	}
	walk(env)
	return flat
}

// joinThread blocks for a ThreadHandle's result, as `.join()` would.
func joinThread(th *ThreadHandle) (Value, error) {
	r := <-th.done
	return r.value, r.err
}

func (in *Interp) evalSelect(env *Env, rs *resourceScope, n *ast.SelectExpr) (Value, signal, error) {
	for _, arm := range n.Arms {
		chVal, sig, err := in.eval(env, rs, arm.Chan)
		if err != nil || sig.kind != sigNone {
			return chVal, sig, err
		}
		if chVal.Kind != KindReceiver {
			return Value{}, noSignal, fmt.Errorf("interp: select arm channel is not a Receiver")
		}
		select {
		case v, ok := <-chVal.Receiver.ch:
			if !ok {
				continue
			}
			armEnv := NewEnv(env)
			matchPattern(armEnv, arm.Pattern, v)
			return in.eval(armEnv, rs, arm.Body)
		default:
		}
	}
	// No arm was immediately ready: block on the first arm's channel
	// (§6's `select_poll` dispatch entry models the non-blocking probe
	// above; a real scheduler would register all arms and wake on the
	// first ready one, which a single-goroutine interpreter can
	// approximate by falling back to a blocking receive on arm zero).
	if len(n.Arms) == 0 {
		return Unit(), noSignal, nil
	}
	first := n.Arms[0]
	chVal, sig, err := in.eval(env, rs, first.Chan)
	if err != nil || sig.kind != sigNone {
		return chVal, sig, err
	}
	if chVal.Kind != KindReceiver {
		return Value{}, noSignal, fmt.Errorf("interp: select arm channel is not a Receiver")
	}
	v, ok := chVal.Receiver.Recv()
	if !ok {
		return Unit(), noSignal, nil
	}
	armEnv := NewEnv(env)
	matchPattern(armEnv, first.Pattern, v)
	return in.eval(armEnv, rs, first.Body)
}
