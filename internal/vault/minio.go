package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"healthtrack/internal/config"
	"healthtrack/internal/health"
)

// MinioVault stores exports in a MinIO bucket, typically on a home server.
type MinioVault struct {
	name   string
	bucket string
	prefix string
	mc     *minio.Client
}

// NewMinioVault creates the client. No request is made until the vault is
// used.
func NewMinioVault(cfg config.VaultConfig) (*MinioVault, error) {
	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioVault{
		name:   cfg.Name,
		bucket: cfg.MinioBucket,
		prefix: cfg.MinioPrefix,
		mc:     mc,
	}, nil
}

// PutExport uploads the export and then its version marker.
func (v *MinioVault) PutExport(ctx context.Context, profileID string, r io.Reader, size int64, version int64) error {
	key := objectKey(v.prefix, profileID, ".json")
	info, err := v.mc.PutObject(ctx, v.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", v.bucket, key, err)
	}
	if info.Size != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, info.Size)
	}

	versionData := []byte(strconv.FormatInt(version, 10))
	versionKey := objectKey(v.prefix, profileID, ".version")
	_, err = v.mc.PutObject(ctx, v.bucket, versionKey, bytes.NewReader(versionData), int64(len(versionData)), minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", v.bucket, versionKey, err)
	}
	return nil
}

// GetExport downloads the profile's export into w.
func (v *MinioVault) GetExport(ctx context.Context, profileID string, w io.Writer) error {
	key := objectKey(v.prefix, profileID, ".json")
	data, found, err := v.get(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("export not found for profile: %s", profileID)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// GetExportVersion returns 0 when the profile has no export yet.
func (v *MinioVault) GetExportVersion(ctx context.Context, profileID string) (int64, error) {
	data, found, err := v.get(ctx, objectKey(v.prefix, profileID, ".version"))
	if err != nil || !found {
		return 0, err
	}
	return parseVersion(data)
}

// ValidateSetup creates the bucket if it does not exist.
func (v *MinioVault) ValidateSetup(ctx context.Context) error {
	exists, err := v.mc.BucketExists(ctx, v.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", v.bucket, err)
	}
	if !exists {
		if err := v.mc.MakeBucket(ctx, v.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", v.bucket, err)
		}
	}
	return nil
}

// get reads a whole object. found is false when the key does not exist.
func (v *MinioVault) get(ctx context.Context, key string) ([]byte, bool, error) {
	obj, err := v.mc.GetObject(ctx, v.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", v.bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s/%s: %w", v.bucket, key, err)
	}
	return data, true, nil
}

var _ health.Vault = (*MinioVault)(nil)
