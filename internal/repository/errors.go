package repository

import (
	"errors"

	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"

	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
)

// mapError é a única camada que inspeciona exceções do SDK. O reconciliador
// só enxerga categorias de faults.
func mapError(operation string, err error) error {
	if isNotFound(err) {
		return faults.NewTypedError(faults.NotFoundError, operation+" failed", err)
	}
	return faults.NewTypedError(faults.ClientError, operation+" failed", err)
}

// isNotFound cobre a exceção tipada da Lambda e o código genérico smithy.
func isNotFound(err error) bool {
	var nf *lambdatypes.ResourceNotFoundException
	if errors.As(err, &nf) {
		return true
	}
	return isAPIErrorCode(err, "ResourceNotFoundException")
}

// isAPIErrorCode verifica o código de erro smithy APIError
func isAPIErrorCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == code
	}
	return false
}
