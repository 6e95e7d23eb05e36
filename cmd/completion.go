package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_doorlock() {
    local cur prev words cword
    _init_completion || return

    local commands="keypad enter lock status reset pin compact completion help"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        enter)
            COMPREPLY=($(compgen -W "-trace -config" -- "$cur"))
            ;;
        reset)
            COMPREPLY=($(compgen -W "--force -config" -- "$cur"))
            ;;
        pin)
            if [[ $cword -eq 2 ]]; then
                COMPREPLY=($(compgen -W "set rm status hash" -- "$cur"))
            fi
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        *)
            if [[ "$prev" == "-config" ]]; then
                _filedir toml
            else
                COMPREPLY=($(compgen -W "-config" -- "$cur"))
            fi
            ;;
    esac
}

complete -F _doorlock doorlock
`

const zshCompletion = `#compdef doorlock

_doorlock() {
    local -a commands
    commands=(
        'keypad:Interactive terminal keypad'
        'enter:Submit a PIN once'
        'lock:Lock the door'
        'status:Show lock state'
        'reset:Erase persisted lock state'
        'pin:Manage the keyring PIN'
        'compact:Compact the state file'
        'completion:Generate shell completions'
        'help:Show help for a command'
    )

    if (( CURRENT == 2 )); then
        _describe 'command' commands
        return
    fi

    case "$words[2]" in
        enter)
            _arguments '-trace[Show state changes]' '-config[Config file]:file:_files'
            ;;
        reset)
            _arguments '--force[Reset without confirmation]' '-config[Config file]:file:_files'
            ;;
        pin)
            _values 'pin command' set rm status hash
            ;;
        completion)
            _values 'shell' bash zsh fish
            ;;
        help)
            _describe 'command' commands
            ;;
        *)
            _arguments '-config[Config file]:file:_files'
            ;;
    esac
}

_doorlock "$@"
`

const fishCompletion = `complete -c doorlock -f
complete -c doorlock -n '__fish_use_subcommand' -a keypad -d 'Interactive terminal keypad'
complete -c doorlock -n '__fish_use_subcommand' -a enter -d 'Submit a PIN once'
complete -c doorlock -n '__fish_use_subcommand' -a lock -d 'Lock the door'
complete -c doorlock -n '__fish_use_subcommand' -a status -d 'Show lock state'
complete -c doorlock -n '__fish_use_subcommand' -a reset -d 'Erase persisted lock state'
complete -c doorlock -n '__fish_use_subcommand' -a pin -d 'Manage the keyring PIN'
complete -c doorlock -n '__fish_use_subcommand' -a compact -d 'Compact the state file'
complete -c doorlock -n '__fish_use_subcommand' -a completion -d 'Generate shell completions'
complete -c doorlock -n '__fish_use_subcommand' -a help -d 'Show help for a command'
complete -c doorlock -n '__fish_seen_subcommand_from enter' -o trace -d 'Show state changes'
complete -c doorlock -n '__fish_seen_subcommand_from reset' -l force -d 'Reset without confirmation'
complete -c doorlock -n '__fish_seen_subcommand_from pin' -a 'set rm status hash'
complete -c doorlock -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'
complete -c doorlock -o config -r -F -d 'Config file'
`
