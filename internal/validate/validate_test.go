package validate

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dab-demo/dab-demo/internal/paths"
	testutil "github.com/dab-demo/dab-demo/internal/testing"
	"github.com/dab-demo/dab-demo/internal/values"
)

// checkOf returns the failed check name carried by err, or "" when err is not an *Error.
func checkOf(err error) string {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Check
	}
	return ""
}

var _ = Describe("Shipped shared config", func() {
	var configDir string

	BeforeEach(func() {
		configDir = paths.FromSource().SharedConfig()
	})

	Context("bar.yml", func() {
		var barPath string

		BeforeEach(func() {
			barPath = filepath.Join(configDir, BarFileName)
		})

		It("exists and is not empty", func() {
			info, err := os.Stat(barPath)
			Expect(err).NotTo(HaveOccurred(), "bar.yml file not found at %s", barPath)
			Expect(info.Size()).To(BeNumerically(">", 0), "bar.yml file should not be empty")
		})

		It("passes every check", func() {
			Expect(BarYAML(barPath)).To(Succeed())
		})

		It("parses to bar_test.foo_test == zoo", func() {
			bar, err := values.LoadYAML(barPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(bar).To(HaveKeyWithValue("bar_test", HaveKeyWithValue("foo_test", "zoo")))
		})
	})

	Context("data.json", func() {
		var dataPath string

		BeforeEach(func() {
			dataPath = filepath.Join(configDir, DataFileName)
		})

		It("passes every check", func() {
			Expect(DataJSON(dataPath)).To(Succeed())
		})

		It("holds the five expected strings in order", func() {
			items, err := values.LoadStringList(dataPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(5))
			Expect(items).To(Equal([]string{"Lorem", "Ipsum", "Dolor", "Sit", "Amet"}))
		})
	})

	Context("config directory", func() {
		It("exists, is a directory and is readable", func() {
			Expect(ConfigDir(configDir)).To(Succeed())
		})

		It("holds both config files", func() {
			Expect(filepath.Join(configDir, BarFileName)).To(BeARegularFile())
			Expect(filepath.Join(configDir, DataFileName)).To(BeARegularFile())
		})
	})
})

var _ = Describe("BarYAML", func() {
	It("reports a missing file as an exists failure", func() {
		err := BarYAML(filepath.Join(GinkgoT().TempDir(), BarFileName))
		Expect(checkOf(err)).To(Equal(CheckExists))
		Expect(errors.Is(err, fs.ErrNotExist)).To(BeTrue())
	})

	DescribeTable("fixture outcomes",
		func(fixture, wantCheck string) {
			err := BarYAML(testutil.FixturePath("bar", fixture))
			if wantCheck == "" {
				Expect(err).NotTo(HaveOccurred())
				return
			}
			Expect(err).To(HaveOccurred())
			Expect(checkOf(err)).To(Equal(wantCheck), "error: %v", err)
		},
		Entry("valid file", "valid.yml", ""),
		Entry("empty file stops before parsing", "empty.yml", CheckNotEmpty),
		Entry("malformed YAML", "malformed.yml", CheckValidYAML),
		Entry("duplicate bar_test key", "duplicate-key.yml", CheckValidYAML),
		Entry("duplicate nested key", "duplicate-nested-key.yml", CheckValidYAML),
		Entry("sequence at root", "sequence.yml", CheckRootMapping),
		Entry("missing bar_test", "missing-bar-test.yml", CheckHasBarTest),
		Entry("scalar bar_test", "scalar-bar-test.yml", CheckBarMapping),
		Entry("missing foo_test", "missing-foo-test.yml", CheckHasFooTest),
		Entry("wrong foo_test value", "wrong-value.yml", CheckFooValue),
	)
})

var _ = Describe("DataJSON", func() {
	DescribeTable("fixture outcomes",
		func(fixture, wantCheck string) {
			err := DataJSON(testutil.FixturePath("data", fixture))
			if wantCheck == "" {
				Expect(err).NotTo(HaveOccurred())
				return
			}
			Expect(err).To(HaveOccurred())
			Expect(checkOf(err)).To(Equal(wantCheck), "error: %v", err)
		},
		Entry("valid file", "valid.json", ""),
		Entry("empty file stops before parsing", "empty.json", CheckNotEmpty),
		Entry("malformed JSON", "malformed.json", CheckValidJSON),
		Entry("object at root", "object.json", CheckRootList),
		Entry("four elements", "short.json", CheckLength),
		Entry("non-string element", "mixed.json", CheckAllStrings),
		Entry("elements out of order", "reordered.json", CheckContent),
	)
})

var _ = Describe("ConfigDir", func() {
	It("rejects a missing directory", func() {
		err := ConfigDir(filepath.Join(GinkgoT().TempDir(), "config"))
		Expect(checkOf(err)).To(Equal(CheckExists))
	})

	It("rejects a regular file", func() {
		file := filepath.Join(GinkgoT().TempDir(), "config")
		Expect(os.WriteFile(file, []byte("x"), 0o644)).To(Succeed())
		Expect(checkOf(ConfigDir(file))).To(Equal(CheckIsDir))
	})

	It("accepts an empty directory", func() {
		Expect(ConfigDir(GinkgoT().TempDir())).To(Succeed())
	})
})

var _ = Describe("SharedConfig", func() {
	var (
		ctx    context.Context
		logged []string
	)

	BeforeEach(func() {
		logged = nil
		logger := funcr.New(func(prefix, args string) {
			logged = append(logged, args)
		}, funcr.Options{})
		ctx = logr.NewContext(context.Background(), logger)
	})

	It("returns no errors for a generated default project", func() {
		p, err := testutil.NewProject(GinkgoT().TempDir(), testutil.ProjectOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(SharedConfig(ctx, p)).To(BeEmpty())
		Expect(logged).To(HaveLen(3))
	})

	It("collects one error per failing file", func() {
		p, err := testutil.NewProject(GinkgoT().TempDir(), testutil.ProjectOptions{
			Bar:  map[string]interface{}{"bar_test": map[string]interface{}{"foo_test": "zebra"}},
			Data: []string{"Lorem"},
		})
		Expect(err).NotTo(HaveOccurred())

		errs := SharedConfig(ctx, p)
		Expect(errs).To(HaveLen(2))
		Expect(checkOf(errs[0])).To(Equal(CheckFooValue))
		Expect(checkOf(errs[1])).To(Equal(CheckLength))
	})

	It("reports every target when the shared config directory is missing", func() {
		p := paths.MustNew(filepath.Join(GinkgoT().TempDir(), "dab_demo"))
		errs := SharedConfig(ctx, p)
		Expect(errs).To(HaveLen(3))
		for _, err := range errs {
			Expect(checkOf(err)).To(Equal(CheckExists))
		}
	})
})
