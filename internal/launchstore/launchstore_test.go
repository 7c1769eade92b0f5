package launchstore

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var (
		store        *Store
		testCacheDir string
	)

	BeforeEach(func() {
		var err error
		testCacheDir, err = os.MkdirTemp("", "access-launcher-store-test-*")
		Expect(err).NotTo(HaveOccurred())

		store, err = NewStoreWithCacheDir(testCacheDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(store).NotTo(BeNil())
	})

	AfterEach(func() {
		if store != nil {
			err := store.Close()
			Expect(err).NotTo(HaveOccurred())
		}

		if testCacheDir != "" {
			err := os.RemoveAll(testCacheDir)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	Describe("NewStoreWithCacheDir", func() {
		It("should create the access-launcher directory in cache", func() {
			storeDir := filepath.Join(testCacheDir, "access-launcher")
			Expect(storeDir).To(BeADirectory())
		})

		It("should create the database file", func() {
			dbPath := filepath.Join(testCacheDir, "access-launcher", dbFile)
			Expect(dbPath).To(BeAnExistingFile())
		})
	})

	Describe("Record", func() {
		It("should increment the count for an identifier and return it", func() {
			id := "featherpad"

			counts := store.Counts([]string{id})
			Expect(counts[id]).To(Equal(uint64(0)))

			count, err := store.Record(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(uint64(1)))

			count, err = store.Record(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(uint64(2)))
		})

		It("should keep separate counts per identifier", func() {
			id1 := "firefox"
			id2 := "kde-konsole"

			_, err := store.Record(id1)
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Record(id1)
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Record(id2)
			Expect(err).NotTo(HaveOccurred())

			counts := store.Counts([]string{id1, id2})
			Expect(counts[id1]).To(Equal(uint64(2)))
			Expect(counts[id2]).To(Equal(uint64(1)))
		})
	})

	Describe("Counts", func() {
		It("should return zero for identifiers never recorded", func() {
			ids := []string{"gimp", "inkscape", "blender"}

			counts := store.Counts(ids)
			for _, id := range ids {
				Expect(counts[id]).To(Equal(uint64(0)))
			}
		})

		It("should return correct counts for recorded identifiers", func() {
			id1 := "vlc"
			id2 := "mpv"

			for i := 0; i < 3; i++ {
				_, err := store.Record(id1)
				Expect(err).NotTo(HaveOccurred())
			}
			_, err := store.Record(id2)
			Expect(err).NotTo(HaveOccurred())

			counts := store.Counts([]string{id1, id2, "never-launched"})
			Expect(counts[id1]).To(Equal(uint64(3)))
			Expect(counts[id2]).To(Equal(uint64(1)))
			Expect(counts["never-launched"]).To(Equal(uint64(0)))
		})

		It("should handle an empty identifier slice", func() {
			counts := store.Counts(nil)
			Expect(counts).To(BeEmpty())
		})
	})

	Describe("Close", func() {
		It("should close the database successfully", func() {
			err := store.Close()
			Expect(err).NotTo(HaveOccurred())

			store = nil
		})

		It("should handle a nil database gracefully", func() {
			empty := &Store{db: nil}
			err := empty.Close()
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
