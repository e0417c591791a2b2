package handler

import (
	"io/fs"
	"log/slog"
	"net/http"
)

// servePage はfsys内のHTMLファイルを1件返す。
func servePage(w http.ResponseWriter, r *http.Request, fsys fs.FS, name string) {
	if fsys == nil {
		http.NotFound(w, r)
		return
	}
	if _, err := fs.Stat(fsys, name); err != nil {
		slog.Error("page not found", slog.String("page", name), slog.String("error", err.Error()))
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, fsys, name)
}

// NewStaticHandler はfsys配下のファイルを配信するハンドラーを返す。
// "/"にはindex.htmlを返す。
func NewStaticHandler(fsys fs.FS) http.Handler {
	if fsys == nil {
		return http.NotFoundHandler()
	}
	return http.FileServerFS(fsys)
}
