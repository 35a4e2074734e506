package app

import (
	"go.uber.org/zap"

	"sdmenu/hal"
	"sdmenu/menu"
	"sdmenu/menu/bootctl"
	"sdmenu/menu/console"
	"sdmenu/menu/nav"
	"sdmenu/menu/render"
	"sdmenu/menu/shell"
)

func (f *Firmware) runMenu(h hal.HAL, con *console.Console, boot *bootctl.Controller) {
	m := h.Machine()
	rev := m.FirmwareRev()
	star := ""
	if rev&(1<<31) != 0 {
		star = "*"
	}
	con.Printf("\n%s [FW:%X.%02X%s]: SD Card Menu\n", Name, (rev>>8)&0xff, rev&0xff, star)

	if !h.Volume().Supported() {
		f.log.Error("no storage driver")
		con.Print("*** This program requires SD card support in firmware.\n")
		f.unsupported = true
		m.WarmBoot()
	}

	env := f.newEnv(h, con, boot)
	sh, err := shell.New(env)
	if err != nil {
		m.Halt(err)
	}
	for {
		env.CheckStorage()
		st, err := env.Sess.Scan(func(k nav.Kind) {
			if k == nav.KindDir {
				con.Printf("*** Too many directories (use prompt to access others > %d)\n", nav.MaxDirs)
				return
			}
			con.Printf("*** Too many menu files (use prompt to access others > %d)\n", nav.MaxFiles)
		})
		if err != nil {
			f.log.Warn("scan failed", zap.String("dir", env.Sess.Resolve("")), zap.Error(err))
		}
		if st.Empty() {
			con.Print("\nNo menu files present.\n")
			sh.Run()
			continue
		}

		render.Menu(con, st, render.Header{
			Dir:    env.Sess.Resolve(""),
			Mem:    render.MemString(m.Layout().InitialStack),
			Uptime: render.Uptime(f.tb.Now(), f.tb.Hz()),
		})
		render.Prompt(con, st)
		f.choose(env, sh, st)
	}
}

// choose reads menu keys until one selects an action.
func (f *Firmware) choose(env *menu.Env, sh *shell.Shell, st nav.MenuState) {
	con := env.Con
	for {
		key := con.ReadChar()
		if key >= 'a' && key <= 'z' {
			key -= 'a' - 'A'
		}
		switch {
		case key == '\r':
			con.Print("prompt\n")
			sh.Run()
		case key >= 'A' && key <= 'Z':
			i, ok := render.Index('A', key, len(st.Files))
			if !ok {
				con.Ring()
				continue
			}
			con.Printf("%c\n", key)
			name := st.Files[i].Name
			if nav.IsText(name) {
				env.Type(name)
				con.Print("Press any key:")
				con.ReadChar()
				con.Print("\n")
			} else {
				env.Run(name)
			}
		case key >= '0' && key <= '9':
			i, ok := render.Index('0', key, len(st.Dirs))
			if !ok {
				con.Ring()
				continue
			}
			con.Printf("%c\n", key)
			env.ChangeDir(st.Dirs[i].Name)
		case key == '.':
			env.NoSDBoot = !env.NoSDBoot
			if env.NoSDBoot {
				con.Print("no boot\n")
			} else {
				con.Print("SD boot\n")
			}
		case key == '/' || key == console.CtrlA:
			con.Print("upload\n")
			env.WarmBoot(true)
		case key == ' ':
			con.Print("reload\n")
		default:
			con.Print("exit\n")
			env.WarmBoot(env.NoSDBoot)
		}
		return
	}
}
