package metadata

import "github.com/mohitkumar/commonevent/model"

type MetadataStorage interface {
	SaveCommonEvent(def model.CommonEventDefinition) error
	DeleteCommonEvent(id int) error
	GetCommonEvent(id int) (*model.CommonEventDefinition, error)
	// ListCommonEvents returns every stored definition ordered by id.
	ListCommonEvents() ([]model.CommonEventDefinition, error)
}
