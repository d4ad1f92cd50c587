package documents

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const contentTypePDF = "application/pdf"

var allowedTypes = map[string]bool{
	contentTypePDF: true,
	"image/jpeg":   true,
	"image/png":    true,
	"image/tiff":   true,
	"image/webp":   true,
}

// DetectContentType prefers the declared type and falls back to sniffing
// data when the declaration is missing or generic. Parameters are dropped.
func DetectContentType(declared string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
		return mt
	}

	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

type inspection struct {
	contentType string
	hash        string
	pageCount   *int
}

func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func inspect(f File, maxSize int64) (inspection, error) {
	if len(f.Data) == 0 {
		return inspection{}, fmt.Errorf("%w: %s is empty", ErrInvalidFile, f.Name)
	}
	if maxSize > 0 && int64(len(f.Data)) > maxSize {
		return inspection{}, fmt.Errorf("%w: %s", ErrFileTooLarge, f.Name)
	}

	ct := DetectContentType(f.ContentType, f.Data)
	if !allowedTypes[ct] {
		return inspection{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedType, f.Name, ct)
	}

	sum := sha256.Sum256(f.Data)
	result := inspection{
		contentType: ct,
		hash:        hex.EncodeToString(sum[:]),
	}

	if ct == contentTypePDF {
		n, err := api.PageCount(bytes.NewReader(f.Data), pdfConfig())
		if err != nil {
			return inspection{}, fmt.Errorf("%w: %s is not a readable pdf: %v", ErrInvalidFile, f.Name, err)
		}
		result.pageCount = &n
	}

	return result, nil
}

// checkSignature reports whether data matches the recorded hash and, for
// PDFs, parses, validates, and carries a signature.
func checkSignature(data []byte, contentType, hash string) bool {
	if hash != "" {
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != hash {
			return false
		}
	}

	if contentType != contentTypePDF {
		return true
	}

	ctx, err := api.ReadContext(bytes.NewReader(data), pdfConfig())
	if err != nil {
		return false
	}
	if err := api.ValidateContext(ctx); err != nil {
		return false
	}

	return hasSignature(ctx)
}

// hasSignature looks for a signature dictionary or a signature field with a value.
func hasSignature(ctx *model.Context) bool {
	for _, entry := range ctx.XRefTable.Table {
		if entry == nil || entry.Free {
			continue
		}

		d, ok := entry.Object.(types.Dict)
		if !ok {
			continue
		}

		if t := d.Type(); t != nil && *t == "Sig" {
			return true
		}
		if ft := d.NameEntry("FT"); ft != nil && *ft == "Sig" && d["V"] != nil {
			return true
		}
	}
	return false
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return "document"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
