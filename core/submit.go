package core

import "context"

// SubmitInOut builds an envelope from ctx/inputFactory/outputFactory/task
// and submits it to ex. inputFactory may be nil. This is the InOut
// variant of the facade's single submit(envelope) -> bool operation
// (spec §4.1/§6), expressed as a free generic function because Go methods
// cannot carry type parameters of their own.
func SubmitInOut[I any, O Output](ex *Executor, ctx InOutContext[O], inputFactory func() I, outputFactory func() O, task InOutTask[I, O]) bool {
	identity := ctx.Identity()
	env := &envelope{
		identity: identity,
		handle:   task.IsolationHandle(),
		run: func(taskCtx context.Context) (Output, bool, bool) {
			var input I
			if inputFactory != nil {
				v, ok := safeCreate(ex.cfg.Logger, identity, "input factory", inputFactory)
				if !ok {
					return nil, false, true
				}
				input = v
			}
			output, ok := safeCreate(ex.cfg.Logger, identity, "output factory", outputFactory)
			if !ok {
				return nil, false, true
			}
			result, panicked := invokeInOut[I, O](ex.cfg.Logger, identity, task, taskCtx, input, output)
			return result, result.IsAsync(), panicked
		},
		post: func(out Output) {
			if ctx.Post == nil {
				return
			}
			typed, ok := out.(O)
			if !ok {
				return
			}
			ctx.Post(typed)
		},
	}
	return ex.submit(env)
}

// SubmitOut is the Out variant: no input factory, output only.
func SubmitOut[O Output](ex *Executor, ctx OutContext[O], outputFactory func() O, task OutTask[O]) bool {
	identity := ctx.Identity()
	env := &envelope{
		identity: identity,
		handle:   task.IsolationHandle(),
		run: func(taskCtx context.Context) (Output, bool, bool) {
			output, ok := safeCreate(ex.cfg.Logger, identity, "output factory", outputFactory)
			if !ok {
				return nil, false, true
			}
			result, panicked := invokeOut[O](ex.cfg.Logger, identity, task, taskCtx, output)
			return result, result.IsAsync(), panicked
		},
		post: func(out Output) {
			if ctx.Post == nil {
				return
			}
			typed, ok := out.(O)
			if !ok {
				return
			}
			ctx.Post(typed)
		},
	}
	return ex.submit(env)
}

// SubmitIn is the In variant: input only, no output, no post-hook, never
// async (spec §4.4: "no output flows back; no post-hook is called").
func SubmitIn[I any](ex *Executor, ctx Context, inputFactory func() I, task InTask[I]) bool {
	identity := ctx.Identity()
	env := &envelope{
		identity: identity,
		handle:   task.IsolationHandle(),
		run: func(taskCtx context.Context) (Output, bool, bool) {
			input, ok := safeCreate(ex.cfg.Logger, identity, "input factory", inputFactory)
			if !ok {
				return nil, false, true
			}
			panicked := invokeIn[I](ex.cfg.Logger, identity, task, taskCtx, input)
			return nil, false, panicked
		},
		post: nil,
	}
	return ex.submit(env)
}
