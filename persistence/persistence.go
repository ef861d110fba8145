package persistence

import (
	"errors"
	"fmt"

	"github.com/mohitkumar/commonevent/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

type NotFoundError struct {
	Kind string
	Key  string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// SaveStorage keeps save games by slot name.
type SaveStorage interface {
	Save(slot string, save model.SaveGame) error
	Load(slot string) (*model.SaveGame, error)
	Delete(slot string) error
	// List returns the slot names in ascending order.
	List() ([]string, error)
}
