// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package assetstore

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ProviderCloudinary is the [Provider] name of the Cloudinary backend.
const ProviderCloudinary = "cloudinary"

// maxPrefixRounds bounds the number of partial prefix deletions followed.
const maxPrefixRounds = 20

// CloudinaryProvider stores pages as Cloudinary image uploads.
type CloudinaryProvider struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryProvider builds a provider from account credentials.
func NewCloudinaryProvider(cloudName, apiKey, apiSecret string) (*CloudinaryProvider, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: init: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryProvider{cld: cld}, nil
}

func (provider *CloudinaryProvider) Name() string { return ProviderCloudinary }

// Upload stores the file at {folder}/{publicID}, replacing any previous version.
func (provider *CloudinaryProvider) Upload(ctx context.Context, upload Upload) (UploadResult, error) {
	result, err := provider.cld.Upload.Upload(ctx, upload.Body, uploader.UploadParams{
		PublicID:     path.Join(upload.Folder, upload.PublicID),
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
		ResourceType: "image",
	})
	if err != nil {
		return UploadResult{}, err
	}
	if result.Error.Message != "" {
		return UploadResult{}, errors.New(result.Error.Message)
	}

	return UploadResult{SecureURL: result.SecureURL, PublicID: result.PublicID}, nil
}

// DeleteResources removes up to one batch of image uploads.
func (provider *CloudinaryProvider) DeleteResources(ctx context.Context, publicIDs []string) (map[string]string, error) {
	result, err := provider.cld.Admin.DeleteAssets(ctx, admin.DeleteAssetsParams{
		PublicIDs:    api.CldAPIArray(publicIDs),
		AssetType:    api.Image,
		DeliveryType: api.Upload,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if result.Error.Message != "" {
		return nil, errors.New(result.Error.Message)
	}

	return result.Deleted, nil
}

// DeleteResourcesByPrefix follows partial responses until the prefix is empty.
func (provider *CloudinaryProvider) DeleteResourcesByPrefix(ctx context.Context, prefix string) (int, error) {
	deleted := 0

	for round := 0; round < maxPrefixRounds; round++ {
		result, err := provider.cld.Admin.DeleteAssetsByPrefix(ctx, admin.DeleteAssetsByPrefixParams{
			Prefix:       api.CldAPIArray{prefix},
			AssetType:    api.Image,
			DeliveryType: api.Upload,
			Invalidate:   api.Bool(true),
		})
		if err != nil {
			return deleted, err
		}
		if result.Error.Message != "" {
			return deleted, errors.New(result.Error.Message)
		}

		for _, status := range result.Deleted {
			if status == StatusDeleted {
				deleted++
			}
		}
		if !result.Partial {
			return deleted, nil
		}
	}

	return deleted, fmt.Errorf("cloudinary: prefix %q still partial after %d rounds", prefix, maxPrefixRounds)
}

// PublicID parses the versioned delivery URL.
func (provider *CloudinaryProvider) PublicID(url string) (string, bool) {
	return ParseVersionedPublicID(url)
}

// Ping calls the admin ping endpoint, which also validates credentials.
func (provider *CloudinaryProvider) Ping(ctx context.Context) error {
	result, err := provider.cld.Admin.Ping(ctx)
	if err != nil {
		return err
	}
	if result.Error.Message != "" {
		return errors.New(result.Error.Message)
	}
	return nil
}
