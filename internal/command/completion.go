// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/mcsim/internal/meta"
)

const bashCompletionScript = `# bash completion for mcsim
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_mcsim()
{
    local cur prev group sub
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "runs sims version completion --help --version" -- "$cur") )
        return 0
    fi

    group=${COMP_WORDS[1]}
    if [[ ${COMP_CWORD} -eq 2 ]]; then
        case "$group" in
            runs) COMPREPLY=( $(compgen -W "list show diff purge push" -- "$cur") ) ;;
            sims) COMPREPLY=( $(compgen -W "list" -- "$cur") ) ;;
            completion) COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") ) ;;
        esac
        return 0
    fi

    sub=${COMP_WORDS[2]}
    local common="--color -c --filter -f --output -o --sort -s --titles -t --tldr"

    case "$group $sub" in
        "runs list"|"runs show")
            local opts="$common --cache-dir"
            ;;
        "runs diff")
            local opts="--cache-dir --color -c --tldr"
            ;;
        "runs purge")
            local opts="--cache-dir --older-than --yes -y --tldr"
            ;;
        "runs push")
            local opts="--cache-dir --bucket -b --prefix --region --profile --tldr"
            ;;
        "sims list")
            local opts="$common --sim-dir"
            ;;
        *)
            local opts=""
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--cache-dir" || "$prev" == "--sim-dir" ]]; then
        COMPREPLY=( $(compgen -o dirnames -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _mcsim mcsim
`

const zshCompletionScript = `#compdef mcsim

_mcsim() {
  local -a groups
  groups=(
    'runs:inspect cached experiment runs'
    'sims:inspect checkpointed simulations'
    'version:print the mcsim version'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
  '(-s --sort)'{-s,--sort}'[sort columns]:columns'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'mcsim commands' groups
    return
  fi

  if (( CURRENT == 3 )); then
    case $words[2] in
      runs) _values 'runs commands' list show diff purge push ;;
      sims) _values 'sims commands' list ;;
      completion) _values 'shell' bash zsh ;;
    esac
    return
  fi

  case "$words[2] $words[3]" in
    "runs list"|"runs show")
      _arguments -C $common '--cache-dir[experiment cache root]:dir:_directories' '*:run'
      ;;
    "runs diff")
      _arguments -C '--cache-dir[experiment cache root]:dir:_directories' '(-c --color)'{-c,--color}'[color the diff]' '*:run'
      ;;
    "runs purge")
      _arguments -C '--cache-dir[experiment cache root]:dir:_directories' '--older-than[hours]:hours' '(-y --yes)'{-y,--yes}'[do not ask]'
      ;;
    "runs push")
      _arguments -C '--cache-dir[experiment cache root]:dir:_directories' '(-b --bucket)'{-b,--bucket}'[bucket]:bucket' '--prefix[key prefix]:prefix' '--region[region]:region' '--profile[profile]:profile' '*:run'
      ;;
    "sims list")
      _arguments -C $common '--sim-dir[simulation root]:dir:_directories'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _mcsim mcsim
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	w := writer(cmd)
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: mcsim completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "mcsim completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
