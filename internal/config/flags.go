package config

import (
	"fmt"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/mhsenam/rentmio/internal/utils"
)

type staticFlags struct {
	CORSHighSecurity    bool
	SeedDbWithTestData  bool
	SendgridSandboxMode bool
	SendgridFromEmail   string
	TwilioFromPhone     string
	TextSearchBackend   string
}

func defaultFlags() staticFlags {
	return staticFlags{
		CORSHighSecurity:    false,
		SeedDbWithTestData:  false,
		SendgridSandboxMode: true,
		SendgridFromEmail:   "no-reply@rentmio.local",
		TwilioFromPhone:     "",
		TextSearchBackend:   TextSearchBackendPostgres,
	}
}

func (f staticFlags) apply(cfg *Config) {
	cfg.LDFlag_CORSHighSecurity = f.CORSHighSecurity
	cfg.LDFlag_SeedDbWithTestData = f.SeedDbWithTestData
	cfg.LDFlag_SendgridSandboxMode = f.SendgridSandboxMode
	cfg.LDFlag_SendgridFromEmail = f.SendgridFromEmail
	cfg.LDFlag_TwilioFromPhone = f.TwilioFromPhone
	cfg.LDFlag_TextSearchBackend = f.TextSearchBackend
}

// fetchFlags reads the static flags once. Without an SDK key the client
// runs offline and every flag keeps its default.
func fetchFlags(sdkKey string) (staticFlags, error) {
	flags := defaultFlags()

	var (
		ldClient *ld.LDClient
		err      error
	)
	if sdkKey == "" {
		utils.Logger.Info("LD_SDK_KEY not set; LaunchDarkly runs offline with default flags")
		ldClient, err = ld.MakeCustomClient("", ld.Config{Offline: true}, 0)
	} else {
		ldClient, err = ld.MakeClient(sdkKey, LDConnectionTimeout)
	}
	if err != nil {
		return flags, fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	defer ldClient.Close()

	if sdkKey != "" && !ldClient.Initialized() {
		return flags, fmt.Errorf("LaunchDarkly client failed to initialize")
	}

	context := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	boolFlag := func(name string, def bool) bool {
		v, err := ldClient.BoolVariation(name, context, def)
		if err != nil {
			utils.Logger.WithError(err).Warnf("Error retrieving %s flag, using default", name)
			return def
		}
		utils.Logger.Debugf("%s flag: %t", name, v)
		return v
	}
	stringFlag := func(name, def string) string {
		v, err := ldClient.StringVariation(name, context, def)
		if err != nil || v == "" {
			if err == nil {
				err = errEmptyFlag
			}
			utils.Logger.WithError(err).Warnf("Error retrieving %s flag, using default", name)
			return def
		}
		utils.Logger.Debugf("%s flag: %s", name, v)
		return v
	}

	flags.CORSHighSecurity = boolFlag("cors_high_security", flags.CORSHighSecurity)
	flags.SeedDbWithTestData = boolFlag("seed_db_with_test_data", flags.SeedDbWithTestData)
	flags.SendgridSandboxMode = boolFlag("sendgrid_sandbox_mode", flags.SendgridSandboxMode)
	flags.SendgridFromEmail = stringFlag("sendgrid_from_email", flags.SendgridFromEmail)
	flags.TwilioFromPhone = stringFlag("twilio_from_phone", flags.TwilioFromPhone)
	flags.TextSearchBackend = stringFlag("text_search_backend", flags.TextSearchBackend)

	switch flags.TextSearchBackend {
	case TextSearchBackendPostgres, TextSearchBackendMongo:
	default:
		utils.Logger.Warnf("Unknown text_search_backend %q, using postgres", flags.TextSearchBackend)
		flags.TextSearchBackend = TextSearchBackendPostgres
	}
	return flags, nil
}
