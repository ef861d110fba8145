package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/persistence"
	"github.com/mohitkumar/commonevent/util"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const SAVE_KEY string = "SAVE"

var _ persistence.SaveStorage = new(redisSaveStorage)

type redisSaveStorage struct {
	*baseDao
	encoderDecoder util.EncoderDecoder[model.SaveGame]
}

func NewRedisSaveStorage(conf Config, encoderDecoder util.EncoderDecoder[model.SaveGame]) *redisSaveStorage {
	return &redisSaveStorage{
		baseDao:        newBaseDao(conf),
		encoderDecoder: encoderDecoder,
	}
}

func (r *redisSaveStorage) Save(slot string, save model.SaveGame) error {
	key := r.getNamespaceKey(SAVE_KEY)
	ctx := context.Background()
	data, err := r.encoderDecoder.Encode(save)
	if err != nil {
		return err
	}
	if err := r.redisClient.HSet(ctx, key, []string{slot, string(data)}).Err(); err != nil {
		logger.Error("error in saving game", zap.String("slot", slot), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (r *redisSaveStorage) Load(slot string) (*model.SaveGame, error) {
	key := r.getNamespaceKey(SAVE_KEY)
	ctx := context.Background()
	saveStr, err := r.redisClient.HGet(ctx, key, slot).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "save slot", Key: slot}
		}
		logger.Error("error in loading game", zap.String("slot", slot), zap.Error(err))
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return r.encoderDecoder.Decode([]byte(saveStr))
}

func (r *redisSaveStorage) Delete(slot string) error {
	key := r.getNamespaceKey(SAVE_KEY)
	ctx := context.Background()
	n, err := r.redisClient.HDel(ctx, key, slot).Result()
	if err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	if n == 0 {
		return persistence.NotFoundError{Kind: "save slot", Key: slot}
	}
	return nil
}

func (r *redisSaveStorage) List() ([]string, error) {
	key := r.getNamespaceKey(SAVE_KEY)
	ctx := context.Background()
	slots, err := r.redisClient.HKeys(ctx, key).Result()
	if err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	slices.Sort(slots)
	return slots, nil
}
