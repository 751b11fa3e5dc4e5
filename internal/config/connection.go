package config

import (
	"errors"
	"os"
)

// Connection environment variable names.
const (
	EnvPhabricatorURI = "PHABRICATOR_URI"
	EnvConduitToken   = "CONDUIT_TOKEN"
	EnvBuildPHID      = "BUILD_PHID"
)

// ErrMissingPhabricatorURI and friends are returned by Connection.Validate.
var (
	ErrMissingPhabricatorURI = errors.New("no Phabricator URI: pass --phabricator-uri, set " + EnvPhabricatorURI + ", or set phabricator.uri in .arcconfig")
	ErrMissingConduitToken   = errors.New("no Conduit token: pass --conduit-token or set " + EnvConduitToken)
	ErrMissingBuildPHID      = errors.New("no build target PHID: pass --build-phid or set " + EnvBuildPHID)
)

// Connection holds the settings needed to reach Harbormaster.
type Connection struct {
	PhabricatorURI string
	ConduitToken   string
	BuildPHID      string
}

// ResolveConnection picks each setting from the flag, then the environment,
// then (for the URI only) the .arcconfig value.
func ResolveConnection(flags Connection, arcURI string) Connection {
	return Connection{
		PhabricatorURI: firstNonEmpty(flags.PhabricatorURI, os.Getenv(EnvPhabricatorURI), arcURI),
		ConduitToken:   firstNonEmpty(flags.ConduitToken, os.Getenv(EnvConduitToken)),
		BuildPHID:      firstNonEmpty(flags.BuildPHID, os.Getenv(EnvBuildPHID)),
	}
}

// Validate reports the first missing setting.
func (c Connection) Validate() error {
	switch {
	case c.PhabricatorURI == "":
		return ErrMissingPhabricatorURI
	case c.ConduitToken == "":
		return ErrMissingConduitToken
	case c.BuildPHID == "":
		return ErrMissingBuildPHID
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
