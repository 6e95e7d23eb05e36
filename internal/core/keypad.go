package core

// PressDigit appends d to the pending input. When the input becomes a full
// PIN, verification is scheduled after the submit delay so the completed
// input is observable before the outcome.
func (c *Controller) PressDigit(d rune) {
	if d < '0' || d > '9' {
		return
	}
	c.update(func() bool {
		if c.lockedOut || len(c.input) >= c.cfg.PINLength {
			return false
		}
		next := c.input + string(d)
		if !c.setInput(next) {
			return false
		}
		if len(next) == c.cfg.PINLength {
			c.scheduleSubmit(next)
		}
		return true
	})
}

// Backspace removes the last digit of the pending input
func (c *Controller) Backspace() {
	c.update(func() bool {
		if c.lockedOut || c.input == "" {
			return false
		}
		return c.setInput(c.input[:len(c.input)-1])
	})
}

// scheduleSubmit verifies pin after the submit delay. Caller holds mu.
func (c *Controller) scheduleSubmit(pin string) {
	c.stopSubmit()
	gen := c.submitGen
	c.submitTimer = c.clock.After(c.cfg.SubmitDelay, func() {
		c.update(func() bool {
			if gen != c.submitGen {
				return false
			}
			return c.verify(pin)
		})
	})
}

// stopSubmit cancels a pending auto-submit. Caller holds mu.
func (c *Controller) stopSubmit() {
	c.submitGen++
	if c.submitTimer != nil {
		c.submitTimer.Stop()
		c.submitTimer = nil
	}
}
