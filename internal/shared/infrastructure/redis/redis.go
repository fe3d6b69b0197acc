package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client 包一层 go-redis，集中管理 world 相关的 key/channel 命名。
type Client struct {
	rdb *goredis.Client
}

// Open 解析 redis URL 并 ping。
func Open(ctx context.Context, url string, l *zap.Logger) (*Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if l != nil {
		l.Info("open redis success", zap.String("addr", opts.Addr))
	}
	return &Client{rdb: rdb}, nil
}

// NewClient 用现成的 go-redis 客户端构造，测试时注入。
func NewClient(rdb *goredis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Redis() *goredis.Client {
	return c.rdb
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// WorldChannel 是某个世界的事件房间。
func WorldChannel(worldID string) string {
	return "world:" + worldID + ":events"
}
