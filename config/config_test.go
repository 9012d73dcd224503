/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigFromEnv(t *testing.T) {
	require.NoError(t, os.Setenv("MIGRATOR_STRIPE_KEY", "sk_test_abc"))
	require.NoError(t, os.Setenv("MIGRATOR_TEAM_API_TOKEN", "team-token"))
	defer func() {
		_ = os.Unsetenv("MIGRATOR_STRIPE_KEY")
		_ = os.Unsetenv("MIGRATOR_TEAM_API_TOKEN")
	}()

	err := InitConfig("does-not-exist.json")
	require.NoError(t, err)

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "sk_test_abc", cnf.Billing.StripeKey)
	assert.Equal(t, "team-token", cnf.TeamAPI.Token)
}

func TestValidateAndAddDefaults(t *testing.T) {
	cnf := &Configuration{
		Billing: BillingConfig{StripeKey: " sk_test_abc "},
		TeamAPI: TeamAPIConfig{Token: "team-token"},
	}
	err := cnf.validateAndAddDefaults()
	require.NoError(t, err)

	assert.Equal(t, "Migration Server", cnf.ProjectName)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.Equal(t, "sk_test_abc", cnf.Billing.StripeKey)
	assert.Equal(t, DEFAULT_MAX_RETRIES, cnf.Billing.MaxRetries)
	assert.Equal(t, DEFAULT_RETRY_BASE_DELAY_MS, cnf.Billing.RetryBaseDelayMs)
	assert.Equal(t, DEFAULT_MAX_RETRIES, cnf.TeamAPI.MaxRetries)
	assert.Equal(t, DEFAULT_TEAM_TIMEOUT_SECS, cnf.TeamAPI.TimeoutSeconds)
	assert.NotNil(t, cnf.RateLimit.CleanupIntervalSec)
}

func TestValidateRequiresCredentials(t *testing.T) {
	cnf := &Configuration{TeamAPI: TeamAPIConfig{Token: "team-token"}}
	err := cnf.validateAndAddDefaults()
	assert.EqualError(t, err, "billing stripe key is required")

	cnf = &Configuration{Billing: BillingConfig{StripeKey: "sk_test_abc"}}
	err = cnf.validateAndAddDefaults()
	assert.EqualError(t, err, "team api token is required")
}

func TestRateLimitDefaults(t *testing.T) {
	rps := 10.0
	cnf := &Configuration{
		Billing:   BillingConfig{StripeKey: "sk_test_abc"},
		TeamAPI:   TeamAPIConfig{Token: "team-token"},
		RateLimit: RateLimitConfig{RequestsPerSecond: &rps},
	}
	err := cnf.validateAndAddDefaults()
	require.NoError(t, err)
	require.NotNil(t, cnf.RateLimit.Burst)
	assert.Equal(t, 20, *cnf.RateLimit.Burst)
}

func TestMockConfig(t *testing.T) {
	MockConfig(&Configuration{ProjectName: "test"})
	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "test", cnf.ProjectName)
}
