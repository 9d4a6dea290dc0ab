package cache

import (
	"context"
	"net/url"
	"strings"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// Open returns the backend described by raw:
//
//	""  or "file"           file cache in DefaultDir
//	"file:///path"          file cache in /path
//	"none" or "null"        NullCache
//	"redis://host:6379/0"   RedisCache, keys prefixed "crossplot:"
//	"mongodb://host/db"     MongoCache in db (default "crossplot")
func Open(ctx context.Context, raw string) (Cache, error) {
	switch raw {
	case "", "file":
		dir, err := DefaultDir()
		if err != nil {
			return nil, backendError("file", "locate", err)
		}
		return openFile(dir)
	case "none", "null", "off":
		return NewNullCache(), nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "parse cache url")
	}
	switch u.Scheme {
	case "file":
		if u.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidOption, "file cache url %q has no path", raw)
		}
		return openFile(u.Path)
	case "redis", "rediss":
		c, err := NewRedisCacheFromURL(raw, "crossplot:")
		if err != nil {
			return nil, err
		}
		return c, nil
	case "mongodb", "mongodb+srv":
		db := strings.Trim(u.Path, "/")
		if db == "" {
			db = "crossplot"
		}
		c, err := NewMongoCache(ctx, raw, db, DefaultMongoCollection)
		if err != nil {
			return nil, err
		}
		if err := c.EnsureIndexes(ctx); err != nil {
			c.Close()
			return nil, err
		}
		return c, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidOption, "unknown cache backend %q (want file, none, redis or mongodb)", u.Scheme)
}

func openFile(dir string) (Cache, error) {
	c, err := NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return c, nil
}
