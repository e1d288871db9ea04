package storage_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/frahmantamala/worklog/internal/storage"
)

const pngHeader = "\x89PNG\r\n\x1a\n"

var _ = Describe("PutImage", func() {
	var (
		fs    afero.Fs
		store *storage.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		fs = afero.NewMemMapFs()
		store = storage.New(fs)
		ctx = context.Background()
	})

	upload := func(name, body string) storage.Upload {
		return storage.Upload{FileName: name, ContentType: "image/png", Size: int64(len(body)), Reader: strings.NewReader(body)}
	}

	It("stores a PNG with its header intact", func() {
		body := pngHeader + "pixels"
		stored, err := storage.PutImage(ctx, store, "avatars", upload("me.PNG", body), storage.ImageLimit)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Path).To(HavePrefix("avatars/"))
		Expect(stored.Path).To(HaveSuffix(".png"))

		data, err := afero.ReadFile(fs, stored.Path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(body))
	})

	It("accepts a JPEG", func() {
		_, err := storage.PutImage(ctx, store, "logos", upload("logo.jpg", "\xff\xd8\xff\xe0rest"), storage.ImageLimit)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects content that is not an image whatever it claims to be", func() {
		_, err := storage.PutImage(ctx, store, "avatars", upload("me.png", "%PDF-1.4 not a picture"), storage.ImageLimit)
		Expect(err).To(MatchError(storage.ErrNotImage))

		entries, _ := afero.ReadDir(fs, "avatars")
		Expect(entries).To(BeEmpty())
	})

	It("rejects a declared size over the limit before writing", func() {
		u := upload("big.png", pngHeader+"pixels")
		u.Size = storage.ImageLimit + 1
		_, err := storage.PutImage(ctx, store, "avatars", u, storage.ImageLimit)
		Expect(err).To(MatchError(storage.ErrTooLarge))
	})

	It("rejects a stream that outgrows the limit", func() {
		u := upload("big.png", pngHeader+strings.Repeat("x", 64))
		u.Size = 0
		_, err := storage.PutImage(ctx, store, "avatars", u, 16)
		Expect(err).To(MatchError(storage.ErrTooLarge))
	})
})
