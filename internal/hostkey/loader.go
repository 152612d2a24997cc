package hostkey

import (
	"errors"
	"io"

	CharmLog "github.com/charmbracelet/log"
)

// maxGenerateRetries bounds how many times a missing file is generated and
// read again.
const maxGenerateRetries = 1

// Loader reads or generates host keys into a Bundle.
type Loader struct {
	bundle    *Bundle
	reader    Reader
	generator Generator
	logger    *CharmLog.Logger
}

type LoaderOption func(*Loader)

func WithReader(reader Reader) LoaderOption {
	return func(l *Loader) { l.reader = reader }
}

func WithGenerator(generator Generator) LoaderOption {
	return func(l *Loader) { l.generator = generator }
}

func WithLogger(logger *CharmLog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

func NewLoader(bundle *Bundle, opts ...LoaderOption) *Loader {
	l := &Loader{
		bundle:    bundle,
		reader:    FileReader{},
		generator: FileGenerator{RSABits: DefaultRSABits, DefaultECDSASize: ECDSA256},
		logger:    CharmLog.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadOrGenerate reads the key at path into the bundle, generating a key of
// family and size first if the file does not exist. The slot is taken from
// the file contents, not from family. Read and generation failures only log
// a warning; the only error returned is a *DuplicateKeyError when
// fatalOnDuplicate is set.
func (l *Loader) LoadOrGenerate(family Family, size int, path string, fatalOnDuplicate bool) error {
	logger := l.logger.With("family", family, "path", path)

	for retries := 0; ; retries++ {
		key, err := l.reader.ReadKey(path)
		if err == nil {
			return l.take(key, fatalOnDuplicate)
		}

		if !errors.Is(err, ErrMissingKeyFile) || retries >= maxGenerateRetries {
			logger.Warn("Failed reading hostkey", "error", err)
			return nil
		}

		logger.Warn("Hostkey does not exist, regenerating...")
		if err := l.generator.Generate(family, size, path, true); err != nil {
			logger.Warn("Failed generating hostkey", "error", errors.Join(ErrGenerationFailed, err))
			return nil
		}
		logger.Warn("Successfully generated hostkey")
	}
}

func (l *Loader) take(key *Key, fatalOnDuplicate bool) error {
	slot := key.Slot
	stored, err := l.bundle.Take(key, fatalOnDuplicate)
	if err != nil {
		return err
	}
	if stored {
		l.logger.Debug("Loaded hostkey", "slot", slot)
	} else {
		l.logger.Debug("Ignoring duplicate hostkey", "slot", slot)
	}
	return nil
}
