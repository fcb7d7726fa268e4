package builtin

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"math/big"
	"os"
	"strings"
)

func newHasher(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", "sha256":
		return sha256.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "md5":
		return md5.New(), nil
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", algorithm)
	}
}

type HashDataTool struct{}

func (t *HashDataTool) Name() string { return "hash_data" }

func (t *HashDataTool) Description() string {
	return "Computes the hex digest of a string (sha256, sha1 or md5)."
}

func (t *HashDataTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"data": map[string]any{
				"type":        "string",
				"description": "Data to hash.",
			},
			"algorithm": map[string]any{
				"type":        "string",
				"description": "sha256 (default), sha1 or md5.",
			},
		},
		"required": []string{"data"},
	})
}

func (t *HashDataTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	data, ok := params["data"].(string)
	if !ok {
		return "", fmt.Errorf("missing required param: data")
	}
	h, err := newHasher(stringParam(params, "algorithm"))
	if err != nil {
		return "", err
	}
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil)), nil
}

type HashFileTool struct {
	BaseDirs []string
}

func (t *HashFileTool) Name() string { return "hash_file" }

func (t *HashFileTool) Description() string {
	return "Computes the hex digest of a file (sha256, sha1 or md5)."
}

func (t *HashFileTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "File path to hash.",
			},
			"algorithm": map[string]any{
				"type":        "string",
				"description": "sha256 (default), sha1 or md5.",
			},
		},
		"required": []string{"path"},
	})
}

func (t *HashFileTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	path := stringParam(params, "path")
	if path == "" {
		return "", fmt.Errorf("missing required param: path")
	}
	resolved, ok := resolveConfined(path, t.BaseDirs)
	if !ok {
		return "", fmt.Errorf("refusing to hash outside the allowed base dirs: %q", path)
	}
	h, err := newHasher(stringParam(params, "algorithm"))
	if err != nil {
		return "", err
	}
	f, err := os.Open(resolved)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type Base64EncodeTool struct{}

func (t *Base64EncodeTool) Name() string        { return "base64_encode" }
func (t *Base64EncodeTool) Description() string { return "Encodes a string as standard base64." }

func (t *Base64EncodeTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"data": map[string]any{
				"type":        "string",
				"description": "Data to encode.",
			},
		},
		"required": []string{"data"},
	})
}

func (t *Base64EncodeTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	data, ok := params["data"].(string)
	if !ok {
		return "", fmt.Errorf("missing required param: data")
	}
	return base64.StdEncoding.EncodeToString([]byte(data)), nil
}

type Base64DecodeTool struct{}

func (t *Base64DecodeTool) Name() string        { return "base64_decode" }
func (t *Base64DecodeTool) Description() string { return "Decodes a standard base64 string." }

func (t *Base64DecodeTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"data": map[string]any{
				"type":        "string",
				"description": "Base64 string to decode.",
			},
		},
		"required": []string{"data"},
	})
}

func (t *Base64DecodeTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	data, ok := params["data"].(string)
	if !ok {
		return "", fmt.Errorf("missing required param: data")
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return "", fmt.Errorf("invalid base64: %w", err)
	}
	return string(decoded), nil
}

type GenerateTokenTool struct{}

func (t *GenerateTokenTool) Name() string { return "generate_token" }

func (t *GenerateTokenTool) Description() string {
	return "Generates a random hex token from crypto/rand."
}

func (t *GenerateTokenTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"bytes": map[string]any{
				"type":        "integer",
				"description": "Number of random bytes (default 32, max 256).",
			},
		},
	})
}

func (t *GenerateTokenTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	size := int64(32)
	if v, ok := params["bytes"]; ok {
		if n, ok := asInt64(v); ok && n > 0 {
			size = n
		}
	}
	if size > 256 {
		size = 256
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*-_"

type GeneratePasswordTool struct{}

func (t *GeneratePasswordTool) Name() string { return "generate_password" }

func (t *GeneratePasswordTool) Description() string {
	return "Generates a random password from a mixed character set."
}

func (t *GeneratePasswordTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"length": map[string]any{
				"type":        "integer",
				"description": "Password length (default 16, max 128).",
			},
		},
	})
}

func (t *GeneratePasswordTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	length := int64(16)
	if v, ok := params["length"]; ok {
		if n, ok := asInt64(v); ok && n > 0 {
			length = n
		}
	}
	if length > 128 {
		length = 128
	}
	max := big.NewInt(int64(len(passwordCharset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}
