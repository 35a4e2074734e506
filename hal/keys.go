package hal

// KeyByte maps a key press to the byte a serial terminal would send.
func KeyByte(ev KeyEvent) (byte, bool) {
	if !ev.Press {
		return 0, false
	}
	switch ev.Code {
	case KeyEnter:
		return '\r', true
	case KeyEscape:
		return 0x1b, true
	case KeyBackspace:
		return 0x08, true
	case KeyTab:
		return '\t', true
	case KeyDelete:
		return 0x7f, true
	}
	if ev.Rune > 0 && ev.Rune < 0x80 {
		return byte(ev.Rune), true
	}
	return 0, false
}

// FeedKeys forwards keyboard events to q until events closes. Ctrl-D ends
// the console input.
func FeedKeys(events <-chan KeyEvent, q *QueueSerial) {
	for ev := range events {
		b, ok := KeyByte(ev)
		if !ok {
			continue
		}
		if b == 0x04 {
			q.Close()
			return
		}
		if !q.Push(b) {
			return
		}
	}
}
