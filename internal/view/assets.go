package view

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// Static возвращает файлы /static: скрипт и стили консоли.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
