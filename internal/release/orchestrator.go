package release

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/coopersmall/semgate/internal/git"
	"github.com/coopersmall/semgate/internal/manifest"
	"github.com/coopersmall/semgate/internal/policy"
)

// Config configures one orchestrator run. It is immutable for the
// lifetime of the run.
type Config struct {
	// ReferenceBranch is the branch this push is compared against.
	ReferenceBranch string

	// Descriptors are scanned strictly in order, aggregate last.
	Descriptors []Descriptor

	// DryRun computes and reports everything but writes nothing.
	DryRun bool

	// Logger receives structured progress output. Defaults to the
	// package-default logger.
	Logger *log.Logger
}

// Orchestrator drives one gate run: detect, classify, validate, bump,
// and finally a single atomic commit covering every staged manifest.
type Orchestrator struct {
	scm       SCM
	detector  *Detector
	validator *policy.Validator
	bumper    *AutoBumper
	cfg       Config
	logger    *log.Logger
}

// New creates an Orchestrator.
func New(scm SCM, cfg Config) (*Orchestrator, error) {
	if cfg.ReferenceBranch == "" {
		return nil, errors.New("reference branch is required")
	}
	if len(cfg.Descriptors) == 0 {
		return nil, errors.New("at least one package descriptor is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Orchestrator{
		scm:       scm,
		detector:  NewDetector(scm),
		validator: policy.NewValidator(scm),
		bumper:    NewAutoBumper(scm.RepoPath()),
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Run executes the gate. On success the returned Result describes every
// package outcome and, when bumps were staged, the single governance
// commit. Any policy violation or malformed manifest aborts the run
// before a single file is written.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:           uuid.NewString(),
		ReferenceBranch: o.cfg.ReferenceBranch,
		DryRun:          o.cfg.DryRun,
	}

	branch, err := o.scm.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	result.Branch = branch

	logger := o.logger.With("run", shortID(result.RunID), "branch", branch)

	// Bootstrap rule: with no reference to compare against, every
	// package is treated as changed and receives one patch bump.
	mergeBase := ""
	if o.scm.RefExists(ctx, o.cfg.ReferenceBranch) {
		mergeBase, err = o.scm.MergeBase(ctx, o.cfg.ReferenceBranch, "HEAD")
		if err != nil {
			return nil, err
		}
	} else {
		result.Bootstrap = true
		logger.Info("reference branch not found, bootstrapping",
			"reference", o.cfg.ReferenceBranch)
	}

	var pending []PendingBump
	for _, desc := range o.cfg.Descriptors {
		outcome, bump, err := o.scanPackage(ctx, logger, desc, mergeBase, result.Bootstrap)
		if err != nil {
			return nil, err
		}
		result.Outcomes = append(result.Outcomes, outcome)
		if bump != nil {
			pending = append(pending, *bump)
		}
	}

	if o.cfg.DryRun {
		return result, nil
	}
	if len(pending) == 0 {
		logger.Info("nothing to bump, exiting clean")
		return result, nil
	}

	// Every package scanned clean; now, and only now, touch the tree.
	if err := o.bumper.Apply(pending); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(pending))
	for _, bump := range pending {
		paths = append(paths, bump.Manifest)
	}
	if err := o.scm.Add(ctx, paths...); err != nil {
		return nil, err
	}

	hash, err := o.scm.Commit(ctx, CommitMessage(pending))
	if err != nil {
		return nil, err
	}
	result.Committed = true
	result.CommitHash = hash
	logger.Info("governance commit created", "commit", shortID(hash), "bumps", len(pending))

	return result, nil
}

// scanPackage processes one descriptor through detect -> classify ->
// validate -> plan, returning its outcome and, for automatic patch
// bumps, the pending edit.
func (o *Orchestrator) scanPackage(ctx context.Context, logger *log.Logger, desc Descriptor, mergeBase string, bootstrap bool) (Outcome, *PendingBump, error) {
	pkgLog := logger.With("package", desc.Name)

	m, err := manifest.Load(filepath.Join(o.scm.RepoPath(), desc.Manifest))
	if err != nil {
		return Outcome{}, nil, err
	}
	outcome := Outcome{
		Package:     desc.Name,
		Current:     m.Version,
		CurrentText: m.Version.String(),
	}

	if bootstrap {
		bump, err := o.bumper.Plan(desc, m)
		if err != nil {
			return Outcome{}, nil, err
		}
		pkgLog.Debug("bootstrap patch bump", "from", bump.From, "to", bump.To)
		return o.bumped(outcome, bump), &bump, nil
	}

	changed, err := o.detector.HasChanges(ctx, mergeBase, desc)
	if err != nil {
		return Outcome{}, nil, err
	}
	if !changed {
		pkgLog.Debug("no source changes, skipping")
		outcome.Status = StatusSkipped
		return outcome, nil, nil
	}

	refBytes, err := o.scm.ShowFile(ctx, mergeBase, desc.Manifest)
	if errors.Is(err, git.ErrFileNotAtRef) {
		// Package is new on this branch; its authored version stands.
		pkgLog.Debug("manifest absent at merge-base, accepting authored version")
		outcome.Status = StatusNoChange
		return outcome, nil, nil
	}
	if err != nil {
		return Outcome{}, nil, err
	}

	refManifest, err := manifest.Parse(desc.Manifest, refBytes)
	if err != nil {
		return Outcome{}, nil, fmt.Errorf("reference version of %s: %w", desc.Name, err)
	}

	cls := policy.Classify(m.Version, refManifest.Version)
	outcome.Class = cls.Class
	pkgLog.Debug("classified", "class", cls.Class,
		"current", cls.Current, "reference", cls.Reference)

	switch cls.Class {
	case policy.Invalid:
		return Outcome{}, nil, &policy.Violation{
			Package:  desc.Name,
			Manifest: desc.Manifest,
			Reason:   cls.Reason,
			Err:      cls.Err,
		}

	case policy.NoChange:
		outcome.Status = StatusNoChange
		return outcome, nil, nil

	case policy.MajorDetected, policy.MinorDetected:
		if err := o.validator.Validate(ctx, desc.Name, desc.Manifest, mergeBase, "HEAD", cls); err != nil {
			return Outcome{}, nil, err
		}
		pkgLog.Debug("manual bump validated", "class", cls.Class)
		outcome.Status = StatusManualBump
		return outcome, nil, nil

	default: // policy.PatchNeeded
		bump, err := o.bumper.Plan(desc, m)
		if err != nil {
			return Outcome{}, nil, err
		}
		pkgLog.Debug("patch bump planned", "from", bump.From, "to", bump.To)
		return o.bumped(outcome, bump), &bump, nil
	}
}

func (o *Orchestrator) bumped(outcome Outcome, bump PendingBump) Outcome {
	outcome.Status = StatusAutoBump
	outcome.New = bump.To
	outcome.NewText = bump.To.String()
	return outcome
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
