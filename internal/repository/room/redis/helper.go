package redis

import (
	"context"
	"fmt"
	"reflect"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/watchparty/internal/repository/room"
)

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) hSetStruct(ctx context.Context, c redis.Cmdable, key string, value any) {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	fields := make(map[string]any)
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		tag := t.Field(i).Tag.Get("redis")
		if tag == "" {
			tag = t.Field(i).Name
		}

		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				continue
			}
			fields[tag] = field.Elem().Interface()
		} else {
			fields[tag] = field.Interface()
		}
	}

	c.HSet(ctx, key, fields)
}

func (r repo) expire(ctx context.Context, c redis.Cmdable, keys ...string) {
	for _, key := range keys {
		c.Expire(ctx, key, r.expireDuration)
	}
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}

func (r repo) checkRoomExists(ctx context.Context, roomId string) error {
	res, err := r.rc.Exists(ctx, r.getRoomKey(roomId)).Result()
	if err != nil {
		return fmt.Errorf("failed to check if room exists: %w", err)
	}

	if res == 0 {
		return room.ErrRoomNotFound
	}

	return nil
}
