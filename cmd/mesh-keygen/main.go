// mesh-keygen creates an agent identity: a BIP-39 recovery phrase, the
// derived Ed25519 keypair and its did:key identifier. With -out the
// phrase is sealed into an encrypted keystore file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"agentmesh/go-sdk/internal/keystore"
	"agentmesh/go-sdk/pkg/identity"
)

func main() {
	out := flag.String("out", "", "write an encrypted keystore file to this path")
	passphraseEnv := flag.String("passphrase-env", "MESH_KEYSTORE_PASSPHRASE", "env var holding the keystore passphrase")
	restore := flag.String("restore", "", "derive the identity from an existing mnemonic instead of generating one")
	flag.Parse()

	mnemonic := strings.TrimSpace(*restore)
	if mnemonic == "" {
		var err error
		mnemonic, err = identity.NewMnemonic()
		if err != nil {
			log.Fatalf("mesh-keygen: mnemonic generation failed: %v", err)
		}
	}

	kp, err := identity.FromMnemonic(mnemonic)
	if err != nil {
		log.Fatalf("mesh-keygen: %v", err)
	}

	fmt.Printf("did: %s\n", kp.DID)
	if *restore == "" {
		fmt.Printf("mnemonic: %s\n", mnemonic)
		fmt.Println("store the mnemonic safely; it is the only way to restore this identity")
	}

	if *out == "" {
		return
	}
	passphrase := os.Getenv(*passphraseEnv)
	if strings.TrimSpace(passphrase) == "" {
		log.Fatalf("mesh-keygen: %s is empty, refusing to write an unprotected keystore", *passphraseEnv)
	}
	if err := keystore.Write(*out, passphrase, []byte(mnemonic)); err != nil {
		log.Fatalf("mesh-keygen: keystore write failed: %v", err)
	}
	fmt.Printf("keystore: %s\n", *out)
}
