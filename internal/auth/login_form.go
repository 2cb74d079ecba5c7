package auth

import "time"

// ScheduleFunc runs fn once after d and returns a function that cancels
// the pending call, reporting whether it was still pending.
type ScheduleFunc func(d time.Duration, fn func()) (stop func() bool)

// LoginHooks receive the outcome of a delayed check.
type LoginHooks struct {
	// OnSuccess runs when the credentials are accepted. A non-nil error
	// is shown on the form instead of completing the login.
	OnSuccess func(username string) error
	// OnReject runs when a submission is refused, with the reason. Optional.
	OnReject func(reason error)
}

// LoginForm models the login view's form for the lifetime of one visit to
// that view. Submissions are checked after a fixed delay; while a check is
// pending the form refuses further submissions.
//
// LoginForm is not safe for concurrent use. The caller serializes every
// method call and the scheduled completion (the application lock does this).
type LoginForm struct {
	checker  *Checker
	delay    time.Duration
	schedule ScheduleFunc
	hooks    LoginHooks

	pending    bool
	message    string
	stop       func() bool
	generation uint64
	closed     bool
}

// NewLoginForm builds an idle form.
func NewLoginForm(checker *Checker, delay time.Duration, schedule ScheduleFunc, hooks LoginHooks) *LoginForm {
	return &LoginForm{
		checker:  checker,
		delay:    delay,
		schedule: schedule,
		hooks:    hooks,
	}
}

// Submit starts a credential check. It returns accepted=false without
// side effects while a previous check is pending or after Close. A
// presence violation is reported as ErrMissingCredentials and sets the
// inline message without scheduling anything.
func (f *LoginForm) Submit(username, password string) (accepted bool, err error) {
	if f.closed || f.pending {
		return false, nil
	}

	f.message = ""
	if err := ValidatePresence(username, password); err != nil {
		f.message = MsgMissingCredentials
		f.reject(err)
		return false, err
	}

	f.pending = true
	f.generation++
	generation := f.generation
	f.stop = f.schedule(f.delay, func() {
		f.complete(generation, username, password)
	})
	return true, nil
}

func (f *LoginForm) complete(generation uint64, username, password string) {
	if f.closed || generation != f.generation || !f.pending {
		return
	}
	f.pending = false
	f.stop = nil

	if err := f.checker.Verify(username, password); err != nil {
		f.message = MsgInvalidCredentials
		f.reject(err)
		return
	}
	if err := f.hooks.OnSuccess(username); err != nil {
		f.message = MsgSessionUnavailable
		f.reject(err)
	}
}

func (f *LoginForm) reject(reason error) {
	if f.hooks.OnReject != nil {
		f.hooks.OnReject(reason)
	}
}

// Close discards the form. A pending check is cancelled and a completion
// that races the cancellation is ignored. Close is idempotent.
func (f *LoginForm) Close() {
	if f.closed {
		return
	}
	f.closed = true
	f.pending = false
	f.generation++
	if f.stop != nil {
		f.stop()
		f.stop = nil
	}
}

// Pending reports whether a check is in flight.
func (f *LoginForm) Pending() bool { return f.pending }

// Message returns the inline error text, or "".
func (f *LoginForm) Message() string { return f.message }

// Closed reports whether the form was discarded.
func (f *LoginForm) Closed() bool { return f.closed }
