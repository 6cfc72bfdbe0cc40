package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mdblog/pkg/models"
)

// metadataFile is what data.json decodes into before validation. Pointer
// fields let a missing key be told apart from a zero value.
type metadataFile struct {
	Title    *string `json:"title"`
	FileName *string `json:"file_name"`
	Posted   *string `json:"posted"`
	Hidden   *bool   `json:"hidden"`
}

func (m metadataFile) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.NotNil),
		validation.Field(&m.FileName, validation.NotNil),
		validation.Field(&m.Posted, validation.NotNil),
		validation.Field(&m.Hidden, validation.NotNil),
	)
}

// ParseMetadata decodes a data.json record. The four lowercase keys are
// required and may appear once each; anything else is reported as ErrParse.
func ParseMetadata(content []byte) (models.ArticleMetadata, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.ArticleMetadata{}, fmt.Errorf("%w: expected a JSON object", ErrParse)
	}

	fields, err := decodeObject(trimmed)
	if err != nil {
		return models.ArticleMetadata{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var raw metadataFile
	targets := []struct {
		key string
		dst any
	}{
		{"title", &raw.Title},
		{"file_name", &raw.FileName},
		{"posted", &raw.Posted},
		{"hidden", &raw.Hidden},
	}
	for _, t := range targets {
		value, ok := fields[t.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, t.dst); err != nil {
			return models.ArticleMetadata{}, fmt.Errorf("%w: field %s: %v", ErrParse, t.key, err)
		}
	}
	if err := raw.Validate(); err != nil {
		return models.ArticleMetadata{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return models.ArticleMetadata{
		Title:    *raw.Title,
		FileName: *raw.FileName,
		Posted:   *raw.Posted,
		Hidden:   *raw.Hidden,
	}, nil
}

// decodeObject splits a single JSON object into its members, keyed exactly
// as written. Duplicate keys and trailing data are errors.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected a JSON object")
	}

	fields := map[string]json.RawMessage{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("duplicate field %q", key)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields[key] = value
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after object")
	}
	return fields, nil
}

// EncodeMetadata writes a record in the data.json layout.
func EncodeMetadata(meta models.ArticleMetadata) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(meta); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
