package imagefocus

// enter shows the overlay and attaches the input router. It is idempotent.
func (f *ImageFocus) enter() {
	if f.state.engaged {
		return
	}
	f.log.Debug("ImageFocus.enterImageFocus")

	f.state.engaged = true
	f.overlay.ToggleClass("engaged", true)
	f.state.session = f.attachInput()
	f.env.Window.SetPageScrolling(false)
	f.armHideTimer()

	f.env.Bus.FireEvent(EventImageOverlayDidAppear, nil)
}

// exit hides the overlay and detaches every listener attached by enter.
// It is idempotent.
func (f *ImageFocus) exit() {
	if !f.state.engaged {
		return
	}
	f.log.Debug("ImageFocus.exitImageFocus")

	if f.state.session != nil {
		f.state.session.Dispose()
		f.state.session = nil
	}
	f.env.Window.SetPageScrolling(true)
	f.cancelHideTimer()
	f.state.engaged = false
	f.overlay.ToggleClass("engaged", false)

	f.env.Bus.FireEvent(EventImageOverlayDidDisappear, nil)
}

// armHideTimer schedules the chrome to hide after HideUIAfter. At most one
// timer is pending. Mobile hosts never hide the chrome.
func (f *ImageFocus) armHideTimer() {
	if f.env.Window.IsMobile() {
		return
	}
	f.cancelHideTimer()
	f.state.hideTimer = f.env.Clock.AfterFunc(f.opts.HideUIAfter, f.hideTimerExpired)
}

func (f *ImageFocus) cancelHideTimer() {
	if f.state.hideTimer != nil {
		f.state.hideTimer.Stop()
		f.state.hideTimer = nil
	}
}

// hideTimerExpired hides the chrome unless the mouse moved recently, in
// which case it waits out the remainder
func (f *ImageFocus) hideTimerExpired() {
	f.state.hideTimer = nil
	if !f.state.engaged {
		return
	}
	idle := f.env.Clock.Now().Sub(f.state.mouseLastMovedAt)
	if idle < f.opts.HideUIAfter {
		f.state.hideTimer = f.env.Clock.AfterFunc(f.opts.HideUIAfter-idle, f.hideTimerExpired)
		return
	}
	f.hideUI()
}

// hideUI hides the chrome and stops the hide timer
func (f *ImageFocus) hideUI() {
	f.cancelHideTimer()
	f.setChromeHidden(true)
}

// unhideUI shows the chrome and restarts the hide timer
func (f *ImageFocus) unhideUI() {
	f.setChromeHidden(false)
	f.armHideTimer()
}
