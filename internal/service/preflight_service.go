package service

import (
	"context"
	"fmt"

	"github.com/containerd/log"

	"github.com/raywall/terraform-provider-lambdasync/internal/client"
	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
	"github.com/raywall/terraform-provider-lambdasync/pkg/types"
)

// ObjectChecker é o contrato de consulta a objetos S3 (implementado por repository.S3Repository).
type ObjectChecker interface {
	ObjectExists(ctx context.Context, bucket, key, version string) (bool, error)
}

// PreflightService verifica, sem mutar nada, que a conta, a Role e o pacote
// de código referenciados existem antes de o reconciliador buscar a função.
// Implementa reconcile.Preflighter.
type PreflightService struct {
	STS     client.CallerIdentityAPI
	IAM     *IAMService
	Objects ObjectChecker
}

// Check executa as verificações aplicáveis ao estado desejado. Qualquer
// falha é reportada como faults.ClientError.
func (s *PreflightService) Check(ctx context.Context, desired types.DesiredState) error {
	if desired.State() == types.StateAbsent {
		return nil
	}
	logger := log.G(ctx).WithField("function", desired.Name())

	if roleARN := desired.RoleARN(); roleARN != "" {
		accountID, roleName, err := RoleNameFromARN(roleARN)
		if err != nil {
			return faults.NewTypedError(faults.ClientError, fmt.Sprintf("role %q is not a valid ARN", roleARN), err)
		}

		if accountID != "" && s.STS != nil {
			caller, err := client.AccountID(ctx, s.STS)
			if err != nil {
				return faults.NewTypedError(faults.ClientError, "account check failed", err)
			}
			if caller != accountID {
				return faults.NewTypedError(faults.ClientError,
					fmt.Sprintf("role %s belongs to account %s but credentials are for account %s", roleARN, accountID, caller), nil)
			}
			logger.WithField("account", caller).Debug("account check passed")
		}

		if s.IAM != nil {
			exists, err := s.IAM.CheckRoleExists(ctx, roleName)
			if err != nil {
				return faults.NewTypedError(faults.ClientError, "role check failed", err)
			}
			if !exists {
				return faults.NewTypedError(faults.ClientError, fmt.Sprintf("role %s does not exist", roleName), nil)
			}
			logger.WithField("role", roleName).Debug("role check passed")
		}
	}

	if ref, ok := desired.CodeSource().(types.RemoteRef); ok && s.Objects != nil {
		exists, err := s.Objects.ObjectExists(ctx, ref.Bucket, ref.Key, ref.Version)
		if err != nil {
			return faults.NewTypedError(faults.ClientError, "code object check failed", err)
		}
		if !exists {
			return faults.NewTypedError(faults.ClientError,
				fmt.Sprintf("code object s3://%s/%s does not exist", ref.Bucket, ref.Key), nil)
		}
		logger.WithField("object", "s3://"+ref.Bucket+"/"+ref.Key).Debug("code object check passed")
	}

	return nil
}
