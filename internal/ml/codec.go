package ml

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const persistedVersion = 1

const kindTfidf = "tfidf"

var (
	errNilWriter          = errors.New("writer is nil")
	errNilReader          = errors.New("reader is nil")
	errUnsupportedVersion = errors.New("unsupported artifact version")
	errKindMismatch       = errors.New("artifact kind mismatch")
)

// envelope is the on-disk header of every artifact. Payload is the gob encoding
// of the concrete estimator named by Kind.
type envelope struct {
	Version int
	Kind    string
	Payload []byte
}

func writeEnvelope(w io.Writer, kind string, value any) error {
	if w == nil {
		return errNilWriter
	}
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(value); err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	env := envelope{Version: persistedVersion, Kind: kind, Payload: payload.Bytes()}
	if err := gob.NewEncoder(w).Encode(env); err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return nil
}

func readEnvelope(r io.Reader) (envelope, error) {
	if r == nil {
		return envelope{}, errNilReader
	}
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Version != persistedVersion {
		return envelope{}, fmt.Errorf("%w: %d", errUnsupportedVersion, env.Version)
	}
	return env, nil
}

// SaveClassifier writes a fitted classifier.
func SaveClassifier(w io.Writer, c Classifier) error {
	return writeEnvelope(w, c.Kind(), c)
}

// LoadClassifier reads a classifier written by SaveClassifier and checks its state.
func LoadClassifier(r io.Reader) (Classifier, error) {
	env, err := readEnvelope(r)
	if err != nil {
		return nil, err
	}
	c, err := NewClassifier(env.Kind)
	if err != nil {
		return nil, err
	}
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Kind, err)
	}
	if v, ok := c.(validator); ok {
		if err := v.validate(); err != nil {
			return nil, fmt.Errorf("invalid %s artifact: %w", env.Kind, err)
		}
	}
	return c, nil
}

// SaveVectorizer writes a fitted vectorizer.
func SaveVectorizer(w io.Writer, v *TfidfVectorizer) error {
	return writeEnvelope(w, kindTfidf, v)
}

// LoadVectorizer reads a vectorizer written by SaveVectorizer.
func LoadVectorizer(r io.Reader) (*TfidfVectorizer, error) {
	env, err := readEnvelope(r)
	if err != nil {
		return nil, err
	}
	if env.Kind != kindTfidf {
		return nil, fmt.Errorf("%w: want %s, got %q", errKindMismatch, kindTfidf, env.Kind)
	}
	var v TfidfVectorizer
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode vectorizer: %w", err)
	}
	if err := v.validate(); err != nil {
		return nil, fmt.Errorf("invalid vectorizer artifact: %w", err)
	}
	if err := v.init(); err != nil {
		return nil, err
	}
	return &v, nil
}

func SaveClassifierFile(path string, c Classifier) error {
	return writeFileAtomic(path, func(w io.Writer) error { return SaveClassifier(w, c) })
}

func LoadClassifierFile(path string) (Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open classifier file: %w", err)
	}
	defer f.Close()
	return LoadClassifier(f)
}

func SaveVectorizerFile(path string, v *TfidfVectorizer) error {
	return writeFileAtomic(path, func(w io.Writer) error { return SaveVectorizer(w, v) })
}

func LoadVectorizerFile(path string) (*TfidfVectorizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vectorizer file: %w", err)
	}
	defer f.Close()
	return LoadVectorizer(f)
}

// writeFileAtomic writes to a temp file in the target directory and renames it into
// place, so readers never observe a partial artifact.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
