package invoice

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		var (
			key string
			doc StoredDocument
			err error
		)

		BeforeEach(func() {
			key = "doc-1"
			doc = StoredDocument{
				Filename:    "invoice.pdf",
				ContentType: "application/pdf",
				Data:        []byte("pdf bytes"),
			}
		})

		JustBeforeEach(func() {
			err = storage.Save(key, doc)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should write the document bytes to disk", func() {
				Expect(filepath.Join(tmpDir, key)).To(BeAnExistingFile())
			})

			It("should write the metadata sidecar", func() {
				Expect(filepath.Join(tmpDir, key+".json")).To(BeAnExistingFile())
			})
		})
	})

	Describe("Get", func() {
		var (
			key string
			doc StoredDocument
			err error
		)

		JustBeforeEach(func() {
			doc, err = storage.Get(key)
		})

		When("the document exists", func() {
			BeforeEach(func() {
				key = "doc-1"
				saved := StoredDocument{
					Filename:    "invoice.pdf",
					ContentType: "application/pdf",
					Data:        []byte("pdf bytes"),
				}
				Expect(storage.Save(key, saved)).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the document bytes", func() {
				Expect(doc.Data).To(Equal([]byte("pdf bytes")))
			})

			It("should return the filename and content type", func() {
				Expect(doc.Filename).To(Equal("invoice.pdf"))
				Expect(doc.ContentType).To(Equal("application/pdf"))
			})
		})

		When("the document does not exist", func() {
			BeforeEach(func() {
				key = "nonexistent"
			})

			It("returns the error", func() {
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("reading file"))
			})
		})
	})

	Describe("Delete", func() {
		var (
			key string
			err error
		)

		JustBeforeEach(func() {
			err = storage.Delete(key)
		})

		When("the document exists", func() {
			BeforeEach(func() {
				key = "doc-1"
				saved := StoredDocument{Filename: "invoice.pdf", ContentType: "application/pdf", Data: []byte("x")}
				Expect(storage.Save(key, saved)).NotTo(HaveOccurred())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should remove the document and its sidecar from disk", func() {
				Expect(filepath.Join(tmpDir, key)).NotTo(BeAnExistingFile())
				Expect(filepath.Join(tmpDir, key+".json")).NotTo(BeAnExistingFile())
			})

			It("should make the document inaccessible via Get", func() {
				_, getErr := storage.Get(key)
				Expect(getErr).To(HaveOccurred())
			})
		})

		When("the document does not exist", func() {
			BeforeEach(func() {
				key = "nonexistent"
			})

			It("returns the error", func() {
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("deleting file"))
			})
		})
	})

	Describe("NewLocalStorage", func() {
		When("the directory does not exist", func() {
			It("creates it", func() {
				path := filepath.Join(GinkgoT().TempDir(), "documents")
				_, err := NewLocalStorage(path)
				Expect(err).NotTo(HaveOccurred())
				Expect(path).To(BeADirectory())
			})
		})
	})
})

var _ = Describe("BoltStore", func() {
	var (
		dbPath string
		store  *BoltStore
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		store, err = NewBoltStore(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("Save", func() {
		It("round-trips a document through the database", func() {
			doc := StoredDocument{
				Filename:    "invoice.pdf",
				ContentType: "application/pdf",
				Data:        []byte("pdf bytes"),
			}
			Expect(store.Save("doc-1", doc)).NotTo(HaveOccurred())

			got, err := store.Get("doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(doc))
		})

		It("overwrites an existing key", func() {
			first := StoredDocument{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("a")}
			second := StoredDocument{Filename: "b.png", ContentType: "image/png", Data: []byte("b")}
			Expect(store.Save("doc-1", first)).NotTo(HaveOccurred())
			Expect(store.Save("doc-1", second)).NotTo(HaveOccurred())

			got, err := store.Get("doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Filename).To(Equal("b.png"))
		})
	})

	Describe("Get", func() {
		When("the document does not exist", func() {
			It("returns the error", func() {
				_, err := store.Get("nonexistent")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("document not found"))
			})
		})
	})

	Describe("Delete", func() {
		When("the document exists", func() {
			BeforeEach(func() {
				doc := StoredDocument{Filename: "invoice.pdf", ContentType: "application/pdf", Data: []byte("x")}
				Expect(store.Save("doc-1", doc)).NotTo(HaveOccurred())
			})

			It("removes it", func() {
				Expect(store.Delete("doc-1")).NotTo(HaveOccurred())
				_, err := store.Get("doc-1")
				Expect(err).To(HaveOccurred())
			})
		})

		When("the document does not exist", func() {
			It("should not return an error", func() {
				Expect(store.Delete("nonexistent")).NotTo(HaveOccurred())
			})
		})
	})

	Describe("Close", func() {
		It("should not return an error", func() {
			err := store.Close()
			Expect(err).NotTo(HaveOccurred())
			store = nil
		})
	})
})
