// Package web はサイトの静的ファイル（HTML・JS・CSS）を提供する。
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed public
var embedded embed.FS

// FileSystem は静的ファイルのルートを返す。
// dirが空の場合はバイナリに埋め込んだファイル、それ以外はdir配下のファイルを使う。
func FileSystem(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embedded, "public")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open public dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("public dir %q is not a directory", dir)
	}
	return os.DirFS(dir), nil
}
