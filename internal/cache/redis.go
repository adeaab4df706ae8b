package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/antonio-alexander/go-employee-dashboard/internal"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/utilities"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
)

const (
	hashKeyEmployees string = "employees"
	hashKeySearch    string = "search"
)

type redisCache struct {
	redisClient *redis.Client
	config      struct {
		address        string
		port           string
		password       string
		database       int
		timeout        time.Duration
		connectRetries uint
		ttl            time.Duration
	}
	utilities.Logger
}

func NewRedis(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Cache
} {
	c := &redisCache{Logger: utilities.NewNopLogger()}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *redisCache) Configure(envs map[string]string) error {
	c.config.address, c.config.port = "localhost", "6379"
	c.config.timeout = 10 * time.Second
	c.config.connectRetries = 5
	if redisAddress, ok := envs["REDIS_ADDRESS"]; ok {
		c.config.address = redisAddress
	}
	if redisPort, ok := envs["REDIS_PORT"]; ok {
		c.config.port = redisPort
	}
	if redisPassword, ok := envs["REDIS_PASSWORD"]; ok {
		c.config.password = redisPassword
	}
	if redisDatabase, ok := envs["REDIS_DATABASE"]; ok && redisDatabase != "" {
		i, err := strconv.Atoi(redisDatabase)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DATABASE: %w", err)
		}
		c.config.database = i
	}
	if redisTimeout, ok := envs["REDIS_TIMEOUT"]; ok {
		if i, _ := strconv.ParseInt(redisTimeout, 10, 64); i > 0 {
			c.config.timeout = time.Duration(i) * time.Second
		}
	}
	if s, ok := envs["REDIS_CONNECT_RETRIES"]; ok {
		if i, err := strconv.ParseUint(s, 10, 32); err == nil && i > 0 {
			c.config.connectRetries = uint(i)
		}
	}
	if s, ok := envs["CACHE_TTL"]; ok {
		ttl, _ := strconv.Atoi(s)
		c.config.ttl = time.Second * time.Duration(ttl)
	}
	return nil
}

func (c *redisCache) Open(ctx context.Context) error {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(c.config.address, c.config.port),
		Password: c.config.password,
		DB:       c.config.database,
	})
	if _, err := backoff.Retry(ctx, func() (string, error) {
		ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
		defer cancel()
		pong, err := redisClient.Ping(ctx).Result()
		if err != nil {
			c.Debug(ctx, "redis not ready (%s): %s", redisClient.Options().Addr, err)
		}
		return pong, err
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.config.connectRetries)); err != nil {
		_ = redisClient.Close()
		return err
	}
	c.redisClient = redisClient
	return nil
}

func (c *redisCache) Close(ctx context.Context) error {
	if c.redisClient == nil {
		return nil
	}
	if err := c.redisClient.Close(); err != nil {
		c.Error(ctx, "error while shutting down redis client: %s", err)
	}
	return nil
}

func (c *redisCache) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	if _, err := c.redisClient.Del(ctx, hashKeyEmployees, hashKeySearch).Result(); err != nil {
		return err
	}
	return nil
}

func (c *redisCache) EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	var ids data.EmployeeIds

	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	searchKey, err := search.ToKey()
	if err != nil {
		return nil, err
	}
	value, err := c.redisClient.HGet(ctx, hashKeySearch, searchKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmployeeSearchNotCached
		}
		return nil, err
	}
	if err := ids.UnmarshalBinary([]byte(value)); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*data.Employee{}, nil
	}
	fields := make([]string, 0, len(ids))
	for _, id := range ids {
		fields = append(fields, fmt.Sprint(id))
	}
	values, err := c.redisClient.HMGet(ctx, hashKeyEmployees, fields...).Result()
	if err != nil {
		return nil, err
	}
	employees := make([]*data.Employee, 0, len(values))
	for _, value := range values {
		s, ok := value.(string)
		if !ok {
			//KIM: a nil value means the employee was evicted, the search
			// can't be answered in full
			return nil, ErrEmployeeNotCached
		}
		employee := &data.Employee{}
		if err := employee.UnmarshalBinary([]byte(s)); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, nil
}

func (c *redisCache) EmployeesWrite(ctx context.Context, search data.EmployeeSearch, employees ...*data.Employee) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	searchKey, err := search.ToKey()
	if err != nil {
		return err
	}
	ids, err := json.Marshal(employeeIds(employees))
	if err != nil {
		return err
	}
	_, err = c.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, employee := range employees {
			bytes, err := employee.MarshalBinary()
			if err != nil {
				return err
			}
			pipe.HSet(ctx, hashKeyEmployees, fmt.Sprint(employee.Id), string(bytes))
		}
		pipe.HSet(ctx, hashKeySearch, searchKey, string(ids))
		if c.config.ttl > 0 {
			pipe.Expire(ctx, hashKeySearch, c.config.ttl)
			pipe.Expire(ctx, hashKeyEmployees, c.config.ttl)
		}
		return nil
	})
	return err
}
