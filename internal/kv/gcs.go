package kv

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS 把每个键存成存储桶里的一个对象
type GCS struct {
	client     *storage.Client
	bucketName string
}

// NewGCS 创建 GCS 键值存储
func NewGCS(ctx context.Context, bucketName, credentialsFile string) (*GCS, error) {
	client, err := storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}

	return &GCS{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (c *GCS) Get(ctx context.Context, key string) (string, bool, error) {
	obj := c.client.Bucket(c.bucketName).Object(key)

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return "", false, nil
		}
		return "", false, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (c *GCS) Set(ctx context.Context, key, value string) error {
	obj := c.client.Bucket(c.bucketName).Object(key)

	writer := obj.NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := io.WriteString(writer, value); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}
