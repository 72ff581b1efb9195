package confluence

import (
	"fmt"

	"github.com/tidwall/sjson"
)

// jsonBody builds a JSON request body one path at a time. The first error is
// kept and every later call becomes a no-op.
type jsonBody struct {
	str string
	err error
}

func newBody() jsonBody {
	return jsonBody{str: "{}"}
}

func (b jsonBody) Set(path string, value any) jsonBody {
	if b.err != nil {
		return b
	}
	result, err := sjson.Set(b.str, path, value)
	if err != nil {
		return jsonBody{str: b.str, err: fmt.Errorf("set %q: %w", path, err)}
	}
	return jsonBody{str: result}
}

// SetIf sets path only when cond holds.
func (b jsonBody) SetIf(cond bool, path string, value any) jsonBody {
	if !cond {
		return b
	}
	return b.Set(path, value)
}

func (b jsonBody) SetRaw(path, raw string) jsonBody {
	if b.err != nil {
		return b
	}
	result, err := sjson.SetRaw(b.str, path, raw)
	if err != nil {
		return jsonBody{str: b.str, err: fmt.Errorf("set raw %q: %w", path, err)}
	}
	return jsonBody{str: result}
}

func (b jsonBody) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return []byte(b.str), nil
}
