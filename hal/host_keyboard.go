//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var (
	ctrlKeys = []struct {
		key ebiten.Key
		r   rune
	}{
		{ebiten.KeyA, 0x01},
		{ebiten.KeyC, 0x03},
		{ebiten.KeyD, 0x04},
		{ebiten.KeyX, 0x18},
	}
	specialKeys = []struct {
		key  ebiten.Key
		code KeyCode
	}{
		{ebiten.KeyEnter, KeyEnter},
		{ebiten.KeyNumpadEnter, KeyEnter},
		{ebiten.KeyEscape, KeyEscape},
		{ebiten.KeyBackspace, KeyBackspace},
		{ebiten.KeyTab, KeyTab},
		{ebiten.KeyDelete, KeyDelete},
	}
)

// poll runs on the ebiten update goroutine and never blocks.
func (k *hostKeyboard) poll() {
	emit := func(ev KeyEvent) {
		select {
		case k.ch <- ev:
		default:
		}
	}

	if ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		for _, c := range ctrlKeys {
			if inpututil.IsKeyJustPressed(c.key) {
				emit(KeyEvent{Press: true, Rune: c.r})
			}
		}
		return
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		emit(KeyEvent{Press: true, Rune: r})
	}
	for _, s := range specialKeys {
		if inpututil.IsKeyJustPressed(s.key) {
			emit(KeyEvent{Code: s.code, Press: true})
		}
	}
}
