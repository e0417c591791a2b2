package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 100 << 10

// errInvalidNumber は数値へ変換できない値を表す。
var errInvalidNumber = errors.New("value is not a number")

// formValues はurlencodedまたはJSONのリクエストボディをフィールド名で引けるようにしたもの。
// JSONの場合、値はencoding/jsonがデコードした型（string、float64、bool、nil等）のまま保持する。
type formValues map[string]any

// parseBody はContent-Typeに応じてリクエストボディを読み取る。
// application/jsonはJSONオブジェクトとして、それ以外はフォームとして解釈する。
func parseBody(w http.ResponseWriter, r *http.Request) (formValues, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		values := formValues{}
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&values); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode JSON body: %w", err)
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form body: %w", err)
	}
	values := make(formValues, len(r.PostForm))
	for key, v := range r.PostForm {
		if len(v) > 0 {
			values[key] = v[0]
		}
	}
	return values, nil
}

// String はフィールドを文字列として返す。未指定やnullの場合は空文字列。
func (v formValues) String(key string) string {
	switch x := v[key].(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// Lookup はフィールドが文字列として存在する場合にその値とtrueを返す。
// 未指定・null・文字列以外の場合はfalseを返す。
func (v formValues) Lookup(key string) (string, bool) {
	s, ok := v[key].(string)
	return s, ok
}

// Float はフィールドを数値として返す。
// 未指定・null・空文字列はnil、JSON数値と数値文字列は値、それ以外はerrInvalidNumberを返す。
func (v formValues) Float(key string) (*float64, error) {
	var f float64
	switch x := v[key].(type) {
	case nil:
		return nil, nil
	case float64:
		f = x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%s=%q: %w", key, x, errInvalidNumber)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("%s: %w", key, errInvalidNumber)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%s: %w", key, errInvalidNumber)
	}
	return &f, nil
}
