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

package migrator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shreyank-the-integrator/user-account-creation/model"
)

// Run converts a full input list into a full outcome list. The returned
// slice always has one entry per input record, in input order; a single
// record's failure never aborts the run. The only fatal conditions are an
// invalid processing configuration and an unknown region.
func (m *Migrator) Run(ctx context.Context, records []model.InputRecord, cfg model.ProcessingConfig) ([]model.Outcome, error) {
	ctx, span := tracer.Start(ctx, "Running migration")
	defer span.End()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode.IncludesTeam() {
		if err := m.team.SetRegion(cfg.Region); err != nil {
			return nil, err
		}
	}

	runID := model.GenerateUUIDWithSuffix("run")
	logrus.Infof("migration %s started: %d records, mode %s", runID, len(records), cfg.Mode)

	var outcomes []model.Outcome
	switch cfg.Mode {
	case model.ModeBillingOnly:
		outcomes = m.runBillingPhase(ctx, records, cfg)
	case model.ModeTeamOnly:
		outcomes = m.runTeamOnly(ctx, records, cfg)
	case model.ModeBoth:
		outcomes = m.runBillingPhase(ctx, records, cfg)
		outcomes = m.runCombinedTeamPhase(ctx, outcomes, cfg)
	}

	logrus.Infof("migration %s finished: %d outcomes", runID, len(outcomes))
	return outcomes, nil
}

// runBillingPhase processes every record's billing steps in fixed-size
// batches. Records within a batch run concurrently; the next batch starts
// only after the previous one fully fans in.
func (m *Migrator) runBillingPhase(ctx context.Context, records []model.InputRecord, cfg model.ProcessingConfig) []model.Outcome {
	outcomes := make([]model.Outcome, len(records))
	m.forEachBatch(ctx, len(records), m.pacing.BillingBatchSize, m.pacing.BillingBatchDelay, func(start, end int) {
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = m.processBillingRecord(ctx, records[i], cfg)
			}(i)
		}
		wg.Wait()
	})
	return outcomes
}

// runTeamOnly provisions a team for every input record without touching
// billing.
func (m *Migrator) runTeamOnly(ctx context.Context, records []model.InputRecord, cfg model.ProcessingConfig) []model.Outcome {
	seeds := make([]model.Outcome, len(records))
	for i, record := range records {
		seeds[i] = model.Outcome{
			ExternalID: record.ExternalID,
			Email:      record.Email,
			TeamName:   record.TeamName,
		}
	}
	return m.runTeamBatches(ctx, seeds, cfg)
}

// runCombinedTeamPhase runs team provisioning over the subset of outcomes
// whose billing phase succeeded, then merges the upgraded outcomes back into
// the full list by external id. Billing failures are never passed to the
// team endpoint and their outcomes come through untouched.
func (m *Migrator) runCombinedTeamPhase(ctx context.Context, outcomes []model.Outcome, cfg model.ProcessingConfig) []model.Outcome {
	var eligible []model.Outcome
	for _, outcome := range outcomes {
		if outcome.Status == model.StatusSuccess {
			eligible = append(eligible, outcome)
		}
	}
	if len(eligible) == 0 {
		return outcomes
	}

	// Billing state replicates asynchronously to the system the team
	// endpoint reads from; give it time before the second phase starts.
	logrus.Infof("billing phase done, waiting %s before provisioning %d teams", m.pacing.PropagationDelay, len(eligible))
	m.pause(ctx, m.pacing.PropagationDelay)

	upgraded := m.runTeamBatches(ctx, eligible, cfg)
	upgrades := make(map[string]model.Outcome, len(upgraded))
	for _, outcome := range upgraded {
		upgrades[outcome.ExternalID] = outcome
	}
	return model.MergeOutcomes(outcomes, upgrades)
}

func (m *Migrator) runTeamBatches(ctx context.Context, seeds []model.Outcome, cfg model.ProcessingConfig) []model.Outcome {
	results := make([]model.Outcome, len(seeds))
	m.forEachBatch(ctx, len(seeds), m.pacing.TeamBatchSize, m.pacing.TeamBatchDelay, func(start, end int) {
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = m.processTeamRecord(ctx, seeds[i], cfg)
			}(i)
		}
		wg.Wait()
	})
	return results
}

// forEachBatch walks [0, n) in consecutive chunks of size, calling fn for
// each chunk and sleeping delay between chunks but not after the last one.
func (m *Migrator) forEachBatch(ctx context.Context, n, size int, delay time.Duration, fn func(start, end int)) {
	if size <= 0 {
		size = 1
	}
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		fn(start, end)
		if end < n {
			m.pause(ctx, delay)
		}
	}
}
