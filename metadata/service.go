package metadata

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mohitkumar/commonevent/interpreter"
	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/util"
	c "github.com/patrickmn/go-cache"
	"golang.org/x/exp/slices"
)

type MetadataService interface {
	GetCommonEvent(id int) (*model.CommonEventDefinition, error)
	SaveCommonEvent(def model.CommonEventDefinition) error
	DeleteCommonEvent(id int) error
	ValidateCommonEvent(def model.CommonEventDefinition, knownIds []int) error
	Validate(defs []model.CommonEventDefinition) error
	Load() (*Table, error)
	GetMetadataStorage() MetadataStorage
}

var _ MetadataService = new(MetadataServiceImpl)

type MetadataServiceImpl struct {
	storage MetadataStorage
	cache   *c.Cache
}

func NewMetadataService(storage MetadataStorage) *MetadataServiceImpl {
	return &MetadataServiceImpl{
		storage: storage,
		cache:   c.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *MetadataServiceImpl) GetCommonEvent(id int) (*model.CommonEventDefinition, error) {
	key := strconv.Itoa(id)
	if def, found := s.cache.Get(key); found {
		return def.(*model.CommonEventDefinition), nil
	}
	def, err := s.storage.GetCommonEvent(id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, def)
	return def, nil
}

func (s *MetadataServiceImpl) SaveCommonEvent(def model.CommonEventDefinition) error {
	defs, err := s.storage.ListCommonEvents()
	if err != nil {
		return err
	}
	ids := []int{def.Id}
	for _, d := range defs {
		ids = append(ids, d.Id)
	}
	if err := s.ValidateCommonEvent(def, ids); err != nil {
		return err
	}
	if err := s.storage.SaveCommonEvent(def); err != nil {
		return err
	}
	s.cache.Delete(strconv.Itoa(def.Id))
	return nil
}

// DeleteCommonEvent removes a definition no other event calls.
func (s *MetadataServiceImpl) DeleteCommonEvent(id int) error {
	defs, err := s.storage.ListCommonEvents()
	if err != nil {
		return err
	}
	for _, def := range defs {
		if def.Id == id {
			continue
		}
		for _, ec := range def.Commands {
			if target, ok := interpreter.CallTarget(ec); ok && target == id {
				return fmt.Errorf("common event %d is called by common event %d", id, def.Id)
			}
		}
	}
	if err := s.storage.DeleteCommonEvent(id); err != nil {
		return err
	}
	s.cache.Delete(strconv.Itoa(id))
	return nil
}

// ValidateCommonEvent checks a single definition. Call targets must be among
// knownIds.
func (s *MetadataServiceImpl) ValidateCommonEvent(def model.CommonEventDefinition, knownIds []int) error {
	if def.Id <= 0 {
		return fmt.Errorf("common event id %d should be positive", def.Id)
	}
	if !def.Trigger.IsValid() {
		return fmt.Errorf("common event %d has invalid trigger %d", def.Id, int(def.Trigger))
	}
	if def.SwitchFlag && def.SwitchId <= 0 {
		return fmt.Errorf("common event %d is switch gated but switch id is %d", def.Id, def.SwitchId)
	}
	return ValidateCommands(def.Id, def.Commands, knownIds)
}

// ValidateCommands checks every command of an event's list.
func ValidateCommands(eventId int, commands []model.EventCommand, knownIds []int) error {
	var targets []int
	for idx, ec := range commands {
		if err := interpreter.ValidateCommand(ec); err != nil {
			return fmt.Errorf("common event %d command %d: %w", eventId, idx, err)
		}
		if id, ok := interpreter.CallTarget(ec); ok {
			targets = append(targets, id)
		}
	}
	if !util.ContainsAll(knownIds, targets) {
		for _, id := range targets {
			if !slices.Contains(knownIds, id) {
				return fmt.Errorf("common event %d calls unknown common event %d", eventId, id)
			}
		}
	}
	return nil
}

func (s *MetadataServiceImpl) Validate(defs []model.CommonEventDefinition) error {
	ids := make([]int, 0, len(defs))
	for _, def := range defs {
		if slices.Contains(ids, def.Id) {
			return fmt.Errorf("common event id %d is duplicate", def.Id)
		}
		ids = append(ids, def.Id)
	}
	for _, def := range defs {
		if err := s.ValidateCommonEvent(def, ids); err != nil {
			return err
		}
	}
	return nil
}

// Load validates the stored database and returns it as a Table.
func (s *MetadataServiceImpl) Load() (*Table, error) {
	defs, err := s.storage.ListCommonEvents()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(defs); err != nil {
		return nil, err
	}
	s.cache.Flush()
	return NewTable(defs), nil
}

func (s *MetadataServiceImpl) GetMetadataStorage() MetadataStorage {
	return s.storage
}
