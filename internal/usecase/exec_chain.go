package usecase

import (
	"context"
	"fmt"
	"strconv"
)

// Argument placeholders expanded by exec
const (
	ArgWallet    = "@wallet"
	ArgRPC       = "@rpc"
	ArgChainID   = "@chainid"
	ArgChainName = "@chainname"
	ArgKey       = "@key"
)

// ExecChainParams contains parameters for running a command against a chain
type ExecChainParams struct {
	NameOrID string
	Command  []string
	Failover bool
}

// ExecChain runs a command with a chain's environment injected
type ExecChain struct {
	use      *UseChain
	executor CommandExecutor
}

// NewExecChain creates a new ExecChain use case
func NewExecChain(use *UseChain, executor CommandExecutor) *ExecChain {
	return &ExecChain{use: use, executor: executor}
}

// Run executes the use case
func (uc *ExecChain) Run(ctx context.Context, params ExecChainParams) error {
	if len(params.Command) == 0 {
		return fmt.Errorf("no command given")
	}

	activation, err := uc.use.Activate(ctx, params.NameOrID, params.Failover)
	if err != nil {
		return err
	}

	args, err := ExpandArgs(params.Command[1:], activation)
	if err != nil {
		return err
	}

	return uc.executor.Execute(ctx, ExecCommand{
		Name: params.Command[0],
		Args: args,
		Env:  activation.Env,
	})
}

// ExpandArgs replaces arguments that are exactly one of the @ placeholders
func ExpandArgs(args []string, activation *Activation) ([]string, error) {
	out := make([]string, len(args))
	for i, arg := range args {
		switch arg {
		case ArgWallet:
			if activation.Address == "" {
				return nil, fmt.Errorf("%s used but chain '%s' has no key", arg, activation.Chain.Name)
			}
			out[i] = activation.Address
		case ArgKey:
			if activation.PrivateKey == "" {
				return nil, fmt.Errorf("%s used but chain '%s' has no key", arg, activation.Chain.Name)
			}
			out[i] = activation.PrivateKey
		case ArgRPC:
			out[i] = activation.RPCURL
		case ArgChainID:
			out[i] = strconv.FormatUint(activation.Chain.ChainID, 10)
		case ArgChainName:
			out[i] = activation.Chain.Name
		default:
			out[i] = arg
		}
	}
	return out, nil
}
