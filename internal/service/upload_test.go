package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/gate"
	"github.com/atinyakov/devshowcase/internal/models"
	"github.com/atinyakov/devshowcase/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	puts        int
	key         string
	body        []byte
	contentType string
	err         error
}

func (f *fakeStore) Put(_ context.Context, key string, body []byte, contentType string) (models.StoredObject, error) {
	f.puts++
	f.key, f.body, f.contentType = key, body, contentType
	if f.err != nil {
		return models.StoredObject{}, f.err
	}
	return models.StoredObject{URL: "https://cdn.example/" + key, ETag: `"etag"`}, nil
}

func uploadClaim(data, secret string) models.Claim[models.UploadInput] {
	return models.Claim[models.UploadInput]{
		Payload:       models.UploadInput{FileName: "cover.png", FileType: "image/png", FileData: data},
		ClaimedSecret: secret,
	}
}

func TestUpload_StoresDecodedBytes(t *testing.T) {
	store := &fakeStore{}
	svc := service.NewUploadService(store, gate.New("abc", nil), 0, nil)

	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	res, err := svc.Upload(context.Background(), uploadClaim(data, "abc"))
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, []byte("png-bytes"), store.body)
	assert.Equal(t, "image/png", store.contentType)
	assert.True(t, strings.HasPrefix(res.Key, "uploads/"))
	assert.True(t, strings.HasSuffix(res.Key, "-cover.png"))
	assert.Equal(t, store.key, res.Key)
	assert.Equal(t, "https://cdn.example/"+res.Key, res.URL)
	assert.Equal(t, `"etag"`, res.ETag)
}

func TestUpload_WrongSecretNeverWrites(t *testing.T) {
	store := &fakeStore{}
	svc := service.NewUploadService(store, gate.New("abc", nil), 0, nil)

	_, err := svc.Upload(context.Background(), uploadClaim(base64.StdEncoding.EncodeToString([]byte("x")), "wrong"))
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "got %v", err)
	assert.Zero(t, store.puts)
}

func TestUpload_Validation(t *testing.T) {
	cases := []struct {
		name  string
		claim models.Claim[models.UploadInput]
	}{
		{"bad base64", uploadClaim("!!!not-base64", "abc")},
		{"empty data", uploadClaim("", "abc")},
		{"too large", uploadClaim(base64.StdEncoding.EncodeToString(make([]byte, 64)), "abc")},
		{"not an image", models.Claim[models.UploadInput]{
			Payload:       models.UploadInput{FileName: "a.txt", FileType: "text/plain", FileData: "eA=="},
			ClaimedSecret: "abc",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			verifier := &countingVerifier{inner: gate.New("abc", nil)}
			svc := service.NewUploadService(store, verifier, 32, nil)

			_, err := svc.Upload(context.Background(), tc.claim)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
			assert.Zero(t, store.puts)
			assert.Zero(t, verifier.calls)
		})
	}
}

func TestUpload_StoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("cos: 503")}
	svc := service.NewUploadService(store, gate.New("abc", nil), 0, nil)

	_, err := svc.Upload(context.Background(), uploadClaim(base64.StdEncoding.EncodeToString([]byte("x")), "abc"))
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindInternal, appErr.Kind)
	assert.Equal(t, "failed to upload file", appErr.Message)
}

func TestObjectKey_DropsDirectories(t *testing.T) {
	for _, name := range []string{"../../etc/passwd", `C:\tmp\passwd`, "passwd"} {
		key := service.ObjectKey(name)
		assert.True(t, strings.HasPrefix(key, "uploads/"), key)
		assert.True(t, strings.HasSuffix(key, "-passwd"), key)
		assert.Equal(t, 1, strings.Count(key, "/"), key)
	}
	assert.NotEqual(t, service.ObjectKey("a.png"), service.ObjectKey("a.png"))
}

func TestAdminService_VerifyKey(t *testing.T) {
	svc := service.NewAdminService(gate.New("abc", nil))

	assert.NoError(t, svc.VerifyKey(context.Background(), models.AdminKeyInput{AdminKey: "abc"}))
	assert.True(t, apperr.Is(svc.VerifyKey(context.Background(), models.AdminKeyInput{AdminKey: "abd"}), apperr.KindUnauthorized))
	assert.True(t, apperr.Is(svc.VerifyKey(context.Background(), models.AdminKeyInput{}), apperr.KindValidation))
}
