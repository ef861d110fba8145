package redis

import (
	"context"
	"errors"
	"strconv"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/metadata"
	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/persistence"
	"github.com/mohitkumar/commonevent/util"
	"go.uber.org/zap"
)

const COMMON_EVENT_DEF string = "COMMON_EVENT"

var _ metadata.MetadataStorage = new(redisMetadataStorage)

type redisMetadataStorage struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.CommonEventDefinition]
}

func NewRedisMetadataStorage(conf Config) *redisMetadataStorage {
	return &redisMetadataStorage{
		baseDao:        newBaseDao(conf),
		encoderDecoder: util.NewJsonEncoderDecoder[model.CommonEventDefinition](),
	}
}

func (rs *redisMetadataStorage) SaveCommonEvent(def model.CommonEventDefinition) error {
	data, err := rs.encoderDecoder.Encode(def)
	if err != nil {
		return err
	}
	key := rs.getNamespaceKey(COMMON_EVENT_DEF)
	ctx := context.Background()
	if err := rs.redisClient.HSet(ctx, key, []string{strconv.Itoa(def.Id), string(data)}).Err(); err != nil {
		logger.Error("error in saving common event definition", zap.Int("commonEventId", def.Id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisMetadataStorage) DeleteCommonEvent(id int) error {
	key := rs.getNamespaceKey(COMMON_EVENT_DEF)
	ctx := context.Background()
	n, err := rs.redisClient.HDel(ctx, key, strconv.Itoa(id)).Result()
	if err != nil {
		logger.Error("error in deleting common event definition", zap.Int("commonEventId", id), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if n == 0 {
		return persistence.NotFoundError{Kind: "common event", Key: strconv.Itoa(id)}
	}
	return nil
}

func (rs *redisMetadataStorage) GetCommonEvent(id int) (*model.CommonEventDefinition, error) {
	key := rs.getNamespaceKey(COMMON_EVENT_DEF)
	ctx := context.Background()
	defStr, err := rs.redisClient.HGet(ctx, key, strconv.Itoa(id)).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "common event", Key: strconv.Itoa(id)}
		}
		logger.Error("error in getting common event definition", zap.Int("commonEventId", id), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.encoderDecoder.Decode([]byte(defStr))
}

func (rs *redisMetadataStorage) ListCommonEvents() ([]model.CommonEventDefinition, error) {
	key := rs.getNamespaceKey(COMMON_EVENT_DEF)
	ctx := context.Background()
	values, err := rs.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	byId := make(map[int]model.CommonEventDefinition, len(values))
	for _, v := range values {
		def, err := rs.encoderDecoder.Decode([]byte(v))
		if err != nil {
			return nil, err
		}
		byId[def.Id] = *def
	}
	out := make([]model.CommonEventDefinition, 0, len(byId))
	for _, id := range util.SortedKeys(byId) {
		out = append(out, byId[id])
	}
	return out, nil
}
