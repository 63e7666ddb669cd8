// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assetstore

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// ProviderOSS is the [Provider] name of the Alibaba Cloud OSS backend.
const ProviderOSS = "oss"

const (
	ossCacheControl = "public, max-age=31536000, immutable"
	ossListPageSize = 1000
)

// OSSConfig holds the bucket coordinates.
type OSSConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	// PublicBaseURL is the https origin objects are served from (bucket domain or CDN).
	PublicBaseURL string
}

// OSSProvider stores pages as objects in one OSS bucket.
type OSSProvider struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	publicBase string
}

// NewOSSProvider connects to the bucket.
func NewOSSProvider(cfg OSSConfig) (*OSSProvider, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	return &OSSProvider{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.Bucket,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (provider *OSSProvider) Name() string { return ProviderOSS }

// Upload writes {folder}/{publicID}{ext}. The extension comes from the original file name.
func (provider *OSSProvider) Upload(ctx context.Context, upload Upload) (UploadResult, error) {
	publicID := path.Join(upload.Folder, upload.PublicID)
	key := publicID + strings.ToLower(filepath.Ext(upload.FileName))

	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentDisposition("inline"),
		oss.CacheControl(ossCacheControl),
	}
	if upload.ContentType != "" {
		opts = append(opts, oss.ContentType(upload.ContentType))
	}

	if err := provider.bucket.PutObject(key, upload.Body, opts...); err != nil {
		return UploadResult{}, err
	}

	return UploadResult{SecureURL: provider.publicBase + "/" + key, PublicID: key}, nil
}

// DeleteResources removes a batch of object keys.
//
// OSS reports only the keys it deleted; every other requested key is not_found.
func (provider *OSSProvider) DeleteResources(ctx context.Context, keys []string) (map[string]string, error) {
	result, err := provider.bucket.DeleteObjects(keys, oss.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	statuses := make(map[string]string, len(keys))
	for _, key := range keys {
		statuses[key] = StatusNotFound
	}
	for _, key := range result.DeletedObjects {
		statuses[key] = StatusDeleted
	}
	return statuses, nil
}

// DeleteResourcesByPrefix lists and deletes every object under prefix.
func (provider *OSSProvider) DeleteResourcesByPrefix(ctx context.Context, prefix string) (int, error) {
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	marker := oss.Marker("")
	deleted := 0

	for {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		listing, err := provider.bucket.ListObjects(oss.Prefix(prefix), marker, oss.MaxKeys(ossListPageSize))
		if err != nil {
			return deleted, fmt.Errorf("oss: list %q: %w", prefix, err)
		}

		keys := make([]string, 0, len(listing.Objects))
		for _, object := range listing.Objects {
			keys = append(keys, object.Key)
		}

		if len(keys) > 0 {
			result, err := provider.bucket.DeleteObjects(keys, oss.WithContext(ctx))
			if err != nil {
				return deleted, fmt.Errorf("oss: delete under %q: %w", prefix, err)
			}
			deleted += len(result.DeletedObjects)
		}

		if !listing.IsTruncated {
			return deleted, nil
		}
		marker = oss.Marker(listing.NextMarker)
	}
}

// PublicID strips the public base from a URL issued by Upload.
func (provider *OSSProvider) PublicID(url string) (string, bool) {
	base := provider.publicBase + "/"
	if !strings.HasPrefix(url, base) {
		return "", false
	}

	key := strings.TrimPrefix(url, base)
	if index := strings.IndexAny(key, "?#"); index >= 0 {
		key = key[:index]
	}
	return key, key != ""
}

// Ping checks that the bucket exists and the credentials can see it.
func (provider *OSSProvider) Ping(_ context.Context) error {
	exists, err := provider.client.IsBucketExist(provider.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("oss: bucket %q does not exist", provider.bucketName)
	}
	return nil
}
