// Package storage provides steps that move data between the state and any
// afs-backed location.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/organizer/extension"
	"github.com/viant/organizer/model"
)

const (
	ReadName  = "storage.read"
	WriteName = "storage.write"
)

type ReadInput struct {
	URL string `json:"url,omitempty"`
	// Key names the state entry receiving the content; defaults to the file name.
	Key string `json:"key,omitempty"`
	// Decode parses JSON content instead of storing it as text.
	Decode bool `json:"decode,omitempty"`
}

type WriteInput struct {
	URL string `json:"url,omitempty"`
	// Key selects the state entry to write; empty writes the whole state.
	Key string `json:"key,omitempty"`
}

// Service reads and writes assets with afs.
type Service struct {
	fs afs.Service
}

// New creates a storage service; a nil fs uses afs.New().
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}

// Register adds the storage steps to steps.
func (s *Service) Register(steps *extension.Steps[model.State]) {
	steps.RegisterFactory(ReadName, extension.Typed[model.State, ReadInput](s.read))
	steps.RegisterFactory(WriteName, extension.Typed[model.State, WriteInput](s.write))
}

func (s *Service) read(ctx context.Context, state model.State, input *ReadInput) error {
	if input.URL == "" {
		return fmt.Errorf("%s: url is required", ReadName)
	}
	URL := url.Normalize(input.URL, file.Scheme)
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", URL, err)
	}
	key := input.Key
	if key == "" {
		_, name := url.Split(URL, file.Scheme)
		key = name[:len(name)-len(path.Ext(name))]
	}
	if !input.Decode {
		state[key] = string(data)
		return nil
	}
	var value interface{}
	if err = json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("failed to decode %s: %w", URL, err)
	}
	state[key] = value
	return nil
}

func (s *Service) write(ctx context.Context, state model.State, input *WriteInput) error {
	if input.URL == "" {
		return fmt.Errorf("%s: url is required", WriteName)
	}
	var value interface{} = state
	if input.Key != "" {
		var ok bool
		if value, ok = state[input.Key]; !ok {
			return fmt.Errorf("%s: state has no %q", WriteName, input.Key)
		}
	}
	var data []byte
	switch actual := value.(type) {
	case string:
		data = []byte(actual)
	case []byte:
		data = actual
	default:
		var err error
		if data, err = json.MarshalIndent(actual, "", "  "); err != nil {
			return err
		}
	}
	URL := url.Normalize(input.URL, file.Scheme)
	return s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data))
}
