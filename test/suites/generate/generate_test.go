package generate_test

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/openlms/genmsg"
	"github.com/openlms/genmsg/internal/execute"
	"github.com/openlms/genmsg/internal/pofile"
)

// fakeRunner stands in for the external tools. Merge invocations are
// emulated by concatenating the source catalogs; every call is recorded.
type fakeRunner struct {
	mu    sync.Mutex
	calls []execute.Command
}

func (r *fakeRunner) Run(cmd execute.Command) (execute.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	r.mu.Unlock()

	if filepath.Base(cmd.Path) != "msgcat" {
		return execute.Result{}, nil
	}

	var out string
	var sources []string
	for i := 0; i < len(cmd.Args); i++ {
		if cmd.Args[i] == "-o" && i+1 < len(cmd.Args) {
			out = cmd.Args[i+1]
			i++
			continue
		}
		sources = append(sources, cmd.Args[i])
	}
	var merged []byte
	for _, name := range sources {
		content, err := os.ReadFile(filepath.Join(cmd.Dir, name))
		if err != nil {
			return execute.Result{ExitCode: 1}, &execute.ToolError{Name: cmd.Path, ExitCode: 1, Stderr: err.Error()}
		}
		merged = append(merged, content...)
	}
	if err := os.WriteFile(filepath.Join(cmd.Dir, out), merged, 0644); err != nil {
		return execute.Result{}, err
	}
	return execute.Result{}, nil
}

func (r *fakeRunner) compileCalls() []execute.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	var compiles []execute.Command
	for _, cmd := range r.calls {
		if filepath.Base(cmd.Path) != "msgcat" {
			compiles = append(compiles, cmd)
		}
	}
	return compiles
}

var _ = Describe("Generate", func() {
	var (
		baseDir string
		cfg     *genmsg.Config
		runner  *fakeRunner
		gen     *genmsg.Generator
	)

	writeSource := func(locale, name, content string) {
		dir := cfg.GetMessagesDir(locale)
		Expect(os.MkdirAll(dir, 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		baseDir, err = os.MkdirTemp("", "genmsg-suite")
		Expect(err).NotTo(HaveOccurred())
		configPath := filepath.Join(baseDir, "config.yaml")
		configContent := `locales:
  - fr
dummy_locales:
  - eo
generate_merge:
  django.po:
    - django-partial.po
    - django-studio.po
  djangojs.po: djangojs-partial.po
`
		Expect(os.WriteFile(configPath, []byte(configContent), 0644)).To(Succeed())

		cfg, err = genmsg.LoadConfig(configPath)
		Expect(err).NotTo(HaveOccurred())

		runner = &fakeRunner{}
		log := logrus.New()
		log.SetOutput(io.Discard)
		gen = genmsg.NewGenerator(cfg, runner, log)
	})

	AfterEach(func() {
		Expect(os.RemoveAll(baseDir)).To(Succeed())
	})

	Context("with all source catalogs in place", func() {
		BeforeEach(func() {
			for i, name := range []string{"django-partial.po", "django-studio.po", "djangojs-partial.po"} {
				writeSource("fr", name, fmt.Sprintf(`#: source%d.py:%d
#, python-format
msgid "Hello %d"
msgstr "Bonjour %d"
`, i, 40+i, i, i))
			}
			writeSource("eo", "django-partial.po", "msgid \"dummy\"\nmsgstr \"dummy\"\n")
			writeSource("eo", "django-studio.po", "msgid \"studio\"\nmsgstr \"studio\"\n")
			writeSource("eo", "djangojs-partial.po", "msgid \"js\"\nmsgstr \"js\"\n")
		})

		It("produces one normalized target catalog per merge group", func() {
			Expect(gen.Run(genmsg.RunOptions{Strict: true})).To(Succeed())

			frDir := cfg.GetMessagesDir("fr")
			for _, target := range []string{"django.po", "djangojs.po"} {
				catalog, err := pofile.ParseFile(filepath.Join(frDir, target))
				Expect(err).NotTo(HaveOccurred(), target)
				for _, entry := range catalog.Messages() {
					Expect(entry.HasFlag("python-format")).To(BeFalse(), "format flags must be stripped")
					for _, ref := range entry.References {
						Expect(ref.Line).To(BeZero(), "occurrence line numbers must be stripped")
					}
				}
			}
			Expect(pofile.ParseFile(filepath.Join(frDir, "django.po"))).NotTo(BeNil())
		})

		It("leaves no intermediate merge output behind", func() {
			Expect(gen.Run(genmsg.RunOptions{Strict: true})).To(Succeed())

			for _, locale := range []string{"fr", "eo"} {
				_, err := os.Stat(filepath.Join(cfg.GetMessagesDir(locale), "merged.po"))
				Expect(os.IsNotExist(err)).To(BeTrue(), locale)
			}
		})

		It("compiles exactly once, from the base directory, after every merge", func() {
			Expect(gen.Run(genmsg.RunOptions{Strict: true})).To(Succeed())

			compiles := runner.compileCalls()
			Expect(compiles).To(HaveLen(1))
			Expect(compiles[0].Path).To(Equal("django-admin"))
			Expect(compiles[0].Args).To(Equal([]string{"compilemessages", "-v0"}))
			Expect(compiles[0].Dir).To(Equal(baseDir))
			Expect(runner.calls[len(runner.calls)-1]).To(Equal(compiles[0]))
		})

		It("merges the dummy locale as well", func() {
			Expect(gen.Run(genmsg.RunOptions{Strict: true})).To(Succeed())

			_, err := os.Stat(filepath.Join(cfg.GetMessagesDir("eo"), "django.po"))
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("with a source catalog missing", func() {
		BeforeEach(func() {
			writeSource("fr", "django-partial.po", "msgid \"only\"\nmsgstr \"seul\"\n")
		})

		It("skips the incomplete groups and still compiles by default", func() {
			Expect(gen.Run(genmsg.RunOptions{})).To(Succeed())

			frDir := cfg.GetMessagesDir("fr")
			_, err := os.Stat(filepath.Join(frDir, "django.po"))
			Expect(os.IsNotExist(err)).To(BeTrue(), "incomplete group must not produce a target")
			Expect(runner.compileCalls()).To(HaveLen(1))
		})

		It("fails before compiling when strict", func() {
			err := gen.Run(genmsg.RunOptions{Strict: true})

			var missing *genmsg.MissingFileError
			Expect(err).To(HaveOccurred())
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(runner.compileCalls()).To(BeEmpty())
		})
	})
})
