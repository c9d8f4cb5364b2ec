// This file contains the logic for translating HCL schema structs into the
// format-agnostic project model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/scriptgrid/internal/config"
	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
)

// translateNode converts the HCL-specific node schema into the agnostic model.
// Relative directories resolve against the directory of the declaring file;
// an omitted dir defaults to a folder named after the node.
func (l *Loader) translateNode(ctx context.Context, file string, n *NodeBlock) (*config.NodeDecl, error) {
	logger := ctxlog.FromContext(ctx).With("node", n.ID, "file", file)
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Debug("Translating HCL node to internal config model.")

	dir := n.Dir
	if dir == "" {
		dir = n.ID
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(file), dir)
	}

	env, err := decodeEnv(ctx, n.Env)
	if err != nil {
		return nil, fmt.Errorf("in node '%s': %w", n.ID, err)
	}

	decl := &config.NodeDecl{ID: n.ID, Dir: filepath.Clean(dir), Env: env}
	for _, j := range n.Joins {
		from, err := refFromExpr(ctx, j.From)
		if err != nil {
			return nil, fmt.Errorf("in node '%s', join '%s': %w", n.ID, j.Input, err)
		}
		decl.Joins = append(decl.Joins, config.JoinDecl{Input: j.Input, From: *from})
	}

	logger.Debug("Translated node.", "dir", decl.Dir, "joins", len(decl.Joins), "env", len(decl.Env))
	return decl, nil
}

// translateSettings converts the `settings` block, filling defaults.
func translateSettings(s *SettingsBlock) config.Settings {
	if s == nil {
		return config.DefaultSettings()
	}
	return config.Settings{
		RunDescriptor: s.RunDescriptor,
		InputsMeta:    s.InputsMeta,
		OutputsMeta:   s.OutputsMeta,
	}.WithDefaults()
}
