package cli

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"smcp/internal/crypto"
	"smcp/internal/global"
	"smcp/internal/install"
	"smcp/internal/keystore"
	"smcp/internal/session"
	"strings"
)

// Setup/installation options
func SetupMode(cliOpts *global.CommandSet, commandname string, args []string) {
	var createKeystore bool
	var listKeys bool
	var generateAlias string
	var importAlias string
	var exportAlias string
	var keyBits int
	var keystorePath string
	var sessionTemplate bool
	var configTemplate bool
	var templatePath string
	var installListener bool
	var uninstallListener bool

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	commandFlags.StringVar(&keystorePath, "k", global.DefaultKeystorePath, "Path to the keystore file")
	commandFlags.StringVar(&keystorePath, "keystore", global.DefaultKeystorePath, "Path to the keystore file")
	commandFlags.BoolVar(&createKeystore, "create-keystore", false, "Create a new empty password protected keystore")
	commandFlags.BoolVar(&listKeys, "list-keys", false, "List key aliases held in the keystore")
	commandFlags.StringVar(&generateAlias, "generate-key", "", "Generate a random master key under the given alias")
	commandFlags.StringVar(&importAlias, "import-key", "", "Store a hex master key read from stdin under the given alias")
	commandFlags.StringVar(&exportAlias, "export-key", "", "Print the master key under the given alias as hex")
	commandFlags.IntVar(&keyBits, "key-bits", 512, "Size in bits of generated master keys")
	commandFlags.StringVar(&templatePath, "o", "", "Path for template output (stdout when empty)")
	commandFlags.StringVar(&templatePath, "output", "", "Path for template output (stdout when empty)")
	commandFlags.BoolVar(&sessionTemplate, "session-template", false, "Write an example session parameter file")
	commandFlags.BoolVar(&configTemplate, "config-template", false, "Write an example participant configuration file")
	commandFlags.BoolVar(&installListener, "install-listener", false, "Install/Upgrade the listen service")
	commandFlags.BoolVar(&uninstallListener, "uninstall-listener", false, "Remove the listen service")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[0:])

	var err error

	if createKeystore {
		err = runCreateKeystore(keystorePath)
	} else if listKeys {
		err = withKeystore(keystorePath, func(store *keystore.Store) error {
			return listAliases(os.Stdout, store)
		})
	} else if generateAlias != "" {
		err = withKeystore(keystorePath, func(store *keystore.Store) error {
			return generateKey(store, generateAlias, keyBits)
		})
	} else if importAlias != "" {
		err = withKeystore(keystorePath, func(store *keystore.Store) error {
			return importKey(os.Stdin, store, importAlias)
		})
	} else if exportAlias != "" {
		err = withKeystore(keystorePath, func(store *keystore.Store) error {
			return exportKey(os.Stdout, store, exportAlias)
		})
	} else if sessionTemplate {
		err = writeSessionTemplate(templatePath, os.Stdout)
	} else if configTemplate {
		if templatePath == "" {
			err = fmt.Errorf("specify template file path via the --output/-o arguments")
		} else {
			err = install.CreateTemplateConfig(templatePath)
		}
	} else if installListener {
		err = install.Run()
	} else if uninstallListener {
		err = install.Remove()
	} else {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCreateKeystore(path string) (err error) {
	password, err := keystore.ReadPassword("New keystore password: ", true)
	if err != nil {
		return
	}
	defer crypto.Memzero(password)

	store, err := keystore.Create(path, password)
	if err != nil {
		return
	}
	store.Close()

	fmt.Printf("Successfully created keystore '%s'\n", path)
	return
}

// Unlocks the keystore, runs action and closes it again
func withKeystore(path string, action func(store *keystore.Store) error) (err error) {
	password, err := keystore.ReadPassword("Keystore password: ", false)
	if err != nil {
		return
	}
	defer crypto.Memzero(password)

	store, err := keystore.Open(path, password)
	if err != nil {
		return
	}
	defer store.Close()

	err = action(store)
	return
}

func listAliases(out io.Writer, store *keystore.Store) (err error) {
	aliases := store.Aliases()
	if len(aliases) == 0 {
		fmt.Fprintf(out, "Keystore is empty\n")
		return
	}
	for _, alias := range aliases {
		fmt.Fprintf(out, "%s\n", alias)
	}
	return
}

func generateKey(store *keystore.Store, alias string, bits int) (err error) {
	err = store.Generate(alias, bits)
	if err != nil {
		return
	}
	err = store.Save()
	if err != nil {
		return
	}
	fmt.Printf("Stored new %d-bit master key under alias '%s'\n", bits, alias)
	fmt.Printf("  IMPORTANT: every participant needs this key (use --export-key and --import-key to share it)\n")
	return
}

// Reads one line of hex from input
func importKey(input io.Reader, store *keystore.Store, alias string) (err error) {
	reader := bufio.NewReader(input)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		err = fmt.Errorf("failed reading key: %w", err)
		return
	}
	err = nil

	key, err := hex.DecodeString(strings.TrimSpace(line))
	if err != nil {
		err = fmt.Errorf("key is not valid hex: %w", err)
		return
	}
	defer crypto.Memzero(key)

	err = store.Set(alias, key)
	if err != nil {
		return
	}
	err = store.Save()
	if err != nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Stored imported key under alias '%s'\n", alias)
	return
}

func exportKey(out io.Writer, store *keystore.Store, alias string) (err error) {
	key, err := store.Key(alias)
	if err != nil {
		return
	}
	defer crypto.Memzero(key)

	fmt.Fprintf(out, "%s\n", hex.EncodeToString(key))
	return
}

// Writes the session template to path, or to out when path is empty
func writeSessionTemplate(path string, out io.Writer) (err error) {
	data, err := session.Template()
	if err != nil {
		return
	}
	if path == "" {
		_, err = out.Write(data)
		return
	}
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		err = fmt.Errorf("failed to write session template: %w", err)
		return
	}
	fmt.Printf("Successfully wrote session template to '%s'\n", path)
	return
}
