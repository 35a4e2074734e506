//go:build tinygo && baremetal

package hal

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers/sdcard"
	"tinygo.org/x/tinyfs/fatfs"

	"sdmenu/storage"
)

// newSDVolume serves a FAT formatted SD card on an SPI bus.
func newSDVolume(p sdPins) storage.Volume {
	sd := sdcard.New(p.spi, p.sck, p.sdo, p.sdi, p.cs)
	fat := fatfs.New(&sd).Configure(&fatfs.Config{SectorSize: fatfs.SectorSize})
	return storage.NewTinyFS(fat,
		storage.WithProbe(sd.Configure),
		storage.WithErrorMapper(mapFatErr),
	)
}

func mapFatErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var fr fatfs.FileResult
	if errors.As(err, &fr) {
		switch fr {
		case fatfs.FileResultNoFile, fatfs.FileResultNoPath:
			return fmt.Errorf("sd %s: %w", op, storage.ErrNotFound)
		case fatfs.FileResultDenied, fatfs.FileResultLocked:
			return fmt.Errorf("sd %s: %w", op, storage.ErrIsDir)
		case fatfs.FileResultNoFilesystem:
			return fmt.Errorf("sd %s: %w", op, storage.ErrUnavailable)
		case fatfs.FileResultInvalidName, fatfs.FileResultInvalidParameter:
			return fmt.Errorf("sd %s: %w", op, storage.ErrInvalid)
		default:
			return fmt.Errorf("sd %s: %v", op, err)
		}
	}

	return fmt.Errorf("sd %s: %v", op, err)
}
