package diamond

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/gltr-farm/deployer/configs"
	"github.com/gltr-farm/deployer/internal/artifacts"
	fsjson "github.com/gltr-farm/deployer/internal/infra/filesystem/json"
	"github.com/gltr-farm/deployer/internal/infra/git"
	"github.com/spf13/cobra"
)

const repositoryName = "farm-contracts"

var CompileCMD = &cobra.Command{
	Use:   "compile",
	Short: "Compile the farm contracts from the contracts repository",
	Long:  "Clones the contracts repository and writes ABIs and creation bytecode of every farm contract to the artifacts file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		settings := configs.Values.Compile
		if err := settings.Validate(); err != nil {
			return err
		}

		repoPath, err := git.NewCloner().Clone(ctx, settings.WorkDir, git.Repository{
			Name: repositoryName,
			URL:  settings.RepositoryURL,
			Ref:  settings.Branch,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repository: %w", err)
		}

		names := make([]artifacts.ContractName, 0, len(artifacts.Contracts))
		for name := range artifacts.Contracts {
			names = append(names, name)
		}
		slices.Sort(names)

		compiler := artifacts.NewCompiler(
			filepath.Join(repoPath, settings.Subdir),
			configs.Values.Artifacts,
			fsjson.NewWriter(),
		)
		if err := compiler.Compile(ctx, names); err != nil {
			return fmt.Errorf("failed to compile contracts: %w", err)
		}

		if _, err := artifacts.Load(configs.Values.Artifacts); err != nil {
			return fmt.Errorf("compiled artifacts are not usable: %w", err)
		}

		slog.With("artifacts", configs.Values.Artifacts).Info("contracts compiled")
		return nil
	},
}
