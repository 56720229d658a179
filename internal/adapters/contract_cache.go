package adapters

import (
	"encoding/json"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"pop-mirror/internal/ports"
	"pop-mirror/internal/types"
)

// ContractCacheAdapter persists the shaped contract snapshot. It is a
// display cache for the status view; reconciliation always
// re-resolves and never reads it back.
type ContractCacheAdapter struct {
	Path string
}

func NewContractCacheAdapter(path string) ContractCacheAdapter {
	return ContractCacheAdapter{Path: path}
}

func (a ContractCacheAdapter) Load() (types.ContractData, bool, error) {
	data, err := os.ReadFile(a.Path)
	if os.IsNotExist(err) {
		return types.ContractData{}, false, nil
	}
	if err != nil {
		return types.ContractData{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read contract snapshot " + a.Path).
			WithCause(err)
	}
	var contract types.ContractData
	if err := json.Unmarshal(data, &contract); err != nil {
		return types.ContractData{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("contract snapshot unreadable: " + a.Path).
			WithCause(err)
	}
	return contract, true, nil
}

func (a ContractCacheAdapter) Save(contract types.ContractData) error {
	data, err := json.MarshalIndent(contract, "", "  ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode contract snapshot").
			WithCause(err)
	}
	return writeFileAtomic(a.Path, append(data, '\n'), 0644)
}

var _ ports.ContractCachePort = ContractCacheAdapter{}
