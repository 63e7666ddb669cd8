// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package internal

//go:generate mockgen -copyright_file=../scripts/copyright.txt -destination=./mocks/mock_provider.go -package=mocks github.com/taibuivan/yomira-publish/internal/platform/assetstore Provider
//go:generate mockgen -copyright_file=../scripts/copyright.txt -destination=./mocks/mock_store.go -package=mocks github.com/taibuivan/yomira-publish/internal/core/comic DocumentStore
