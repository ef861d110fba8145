package file

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/persistence"
	"github.com/mohitkumar/commonevent/util"
	"github.com/pierrec/lz4"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const SAVE_EXT = ".save"

const lz4FrameMagic uint32 = 0x184D2204

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type Config struct {
	Dir      string
	Compress bool
}

var _ persistence.SaveStorage = new(fileSaveStorage)

// fileSaveStorage writes one file per slot. Writes are atomic; a crash
// leaves either the old or the new save in place.
type fileSaveStorage struct {
	dir            string
	compress       bool
	encoderDecoder util.EncoderDecoder[model.SaveGame]
}

func NewFileSaveStorage(conf Config, encoderDecoder util.EncoderDecoder[model.SaveGame]) (*fileSaveStorage, error) {
	if err := os.MkdirAll(conf.Dir, 0o755); err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return &fileSaveStorage{
		dir:            conf.Dir,
		compress:       conf.Compress,
		encoderDecoder: encoderDecoder,
	}, nil
}

func (f *fileSaveStorage) path(slot string) (string, error) {
	if !slotPattern.MatchString(slot) {
		return "", fmt.Errorf("invalid save slot %q", slot)
	}
	return filepath.Join(f.dir, slot+SAVE_EXT), nil
}

func (f *fileSaveStorage) Save(slot string, save model.SaveGame) error {
	path, err := f.path(slot)
	if err != nil {
		return err
	}
	data, err := f.encoderDecoder.Encode(save)
	if err != nil {
		return err
	}
	if f.compress {
		data, err = compressLZ4(data)
		if err != nil {
			return err
		}
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		logger.Error("error in saving game", zap.String("slot", slot), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

// Load reads a slot written with or without compression.
func (f *fileSaveStorage) Load(slot string) (*model.SaveGame, error) {
	path, err := f.path(slot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NotFoundError{Kind: "save slot", Key: slot}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	if len(data) >= 4 && binary.LittleEndian.Uint32(data) == lz4FrameMagic {
		data, err = decompressLZ4(data)
		if err != nil {
			return nil, fmt.Errorf("corrupt save slot %s: %w", slot, err)
		}
	}
	return f.encoderDecoder.Decode(data)
}

func (f *fileSaveStorage) Delete(slot string) error {
	path, err := f.path(slot)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return persistence.NotFoundError{Kind: "save slot", Key: slot}
		}
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (f *fileSaveStorage) List() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	slots := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), SAVE_EXT) {
			continue
		}
		slots = append(slots, strings.TrimSuffix(e.Name(), SAVE_EXT))
	}
	slices.Sort(slots)
	return slots, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
