package cmd

import (
	"errors"
	"os"

	"golang.org/x/crypto/ssh"
)

var errEncryptedKey = errors.New("private key is encrypted; provide --passphrase or CMTGEN_PASSPHRASE")

// loadSigner reads a private key, decrypting it when passphrase is set.
func loadSigner(path, passphrase string) (ssh.Signer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(b, []byte(passphrase))
	}
	s, err := ssh.ParsePrivateKey(b)
	if err == nil {
		return s, nil
	}
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		return nil, errEncryptedKey
	}
	return nil, err
}
