package logger

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options задает параметры ротации файла лога
type Options struct {
	// File: путь к файлу лога. Пустой = логирование только в stdout.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup направляет стандартный логгер в stdout и, если задан файл,
// дополнительно в файл с ротацией. Возвращает функцию закрытия файла.
func Setup(opts Options) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if opts.File == "" {
		log.SetOutput(os.Stdout)
		return func() {}
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	log.Printf("[Logger] Логирование в файл: %s (ротация при %d МБ)", opts.File, opts.MaxSizeMB)

	return func() {
		if err := rotator.Close(); err != nil {
			log.Printf("[Logger] Ошибка закрытия файла лога: %v", err)
		}
	}
}
