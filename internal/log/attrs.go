package log

import (
	"log/slog"
	"time"
)

func Organizer(name string) slog.Attr {
	return slog.String("organizer", name)
}

func Step(name string) slog.Attr {
	return slog.String("step", name)
}

func Index(i int) slog.Attr {
	return slog.Int("index", i)
}

func RunID(id string) slog.Attr {
	return slog.String("run_id", id)
}

func Reason(reason string) slog.Attr {
	return slog.String("reason", reason)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("elapsed", d)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
