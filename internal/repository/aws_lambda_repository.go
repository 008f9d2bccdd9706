package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/containerd/log"

	"github.com/raywall/terraform-provider-lambdasync/internal/client"
	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
	"github.com/raywall/terraform-provider-lambdasync/pkg/types"
)

// LambdaAPI é o subconjunto do *lambda.Client usado pelo repositório.
type LambdaAPI interface {
	GetFunction(ctx context.Context, params *lambda.GetFunctionInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error)
	GetFunctionConfiguration(ctx context.Context, params *lambda.GetFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionConfigurationOutput, error)
	CreateFunction(ctx context.Context, params *lambda.CreateFunctionInput, optFns ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error)
	UpdateFunctionConfiguration(ctx context.Context, params *lambda.UpdateFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error)
	UpdateFunctionCode(ctx context.Context, params *lambda.UpdateFunctionCodeInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error)
	DeleteFunction(ctx context.Context, params *lambda.DeleteFunctionInput, optFns ...func(*lambda.Options)) (*lambda.DeleteFunctionOutput, error)
}

// LambdaRepository encapsula operações CRUD da AWS Lambda e traduz os erros
// do SDK para a taxonomia de faults. Implementa reconcile.FunctionClient.
type LambdaRepository struct {
	Client LambdaAPI
	// WaitTimeout limita a espera pelo estado Active/Successful após create e
	// update de configuração. Zero desativa a espera.
	WaitTimeout time.Duration
}

// NewLambdaRepository cria o repositório a partir do AWSClient da invocação.
func NewLambdaRepository(c *client.AWSClient, waitTimeout time.Duration) *LambdaRepository {
	return &LambdaRepository{Client: c.Lambda, WaitTimeout: waitTimeout}
}

// GetFunction busca a função. Retorna faults.NotFoundError se não existir.
func (r *LambdaRepository) GetFunction(ctx context.Context, functionName string) (types.RemoteSnapshot, error) {
	out, err := r.Client.GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(functionName)})
	if err != nil {
		return types.RemoteSnapshot{}, mapError("GetFunction", err)
	}
	return toSnapshot(out), nil
}

// CreateFunction cria a função com o descritor completo.
func (r *LambdaRepository) CreateFunction(ctx context.Context, fn types.FunctionDescriptor) error {
	_, err := r.Client.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: aws.String(fn.Name),
		Role:         aws.String(fn.Role),
		Handler:      aws.String(fn.Handler),
		Runtime:      lambdatypes.Runtime(fn.Runtime),
		Description:  aws.String(fn.Description),
		Code:         functionCode(fn.Code),
		MemorySize:   aws.Int32(fn.MemorySize),
		Timeout:      aws.Int32(fn.Timeout),
	})
	if err != nil {
		return mapError("CreateFunction", err)
	}

	return r.waitForActive(ctx, fn.Name)
}

// UpdateFunctionConfiguration envia apenas os campos presentes no patch.
func (r *LambdaRepository) UpdateFunctionConfiguration(ctx context.Context, functionName string, patch types.ConfigPatch) error {
	_, err := r.Client.UpdateFunctionConfiguration(ctx, &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(functionName),
		Role:         patch.Role,
		Handler:      patch.Handler,
		Description:  patch.Description,
		Timeout:      patch.Timeout,
		MemorySize:   patch.MemorySize,
	})
	if err != nil {
		return mapError("UpdateFunctionConfiguration", err)
	}

	// A Lambda rejeita UpdateFunctionCode enquanto a configuração ainda está em progresso.
	return r.waitForUpdated(ctx, functionName)
}

// UpdateFunctionCode envia o zip inline ou a referência S3.
func (r *LambdaRepository) UpdateFunctionCode(ctx context.Context, functionName string, code types.CodeDecision) error {
	input := &lambda.UpdateFunctionCodeInput{FunctionName: aws.String(functionName)}
	switch code.Kind {
	case types.CodeUploadInline:
		input.ZipFile = code.ZipFile
	case types.CodeReferenceObject:
		input.S3Bucket = aws.String(code.Bucket)
		input.S3Key = aws.String(code.Key)
		if code.Version != "" {
			input.S3ObjectVersion = aws.String(code.Version)
		}
	default:
		return nil
	}

	if _, err := r.Client.UpdateFunctionCode(ctx, input); err != nil {
		return mapError("UpdateFunctionCode", err)
	}

	// Read ou Delete seguintes falham com ResourceConflictException durante o update.
	return r.waitForUpdated(ctx, functionName)
}

// DeleteFunction deleta a Lambda.
func (r *LambdaRepository) DeleteFunction(ctx context.Context, functionName string) error {
	_, err := r.Client.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
		FunctionName: aws.String(functionName),
	})
	if err != nil {
		return mapError("DeleteFunction", err)
	}
	return nil
}

// --- Métodos Privados ---

func (r *LambdaRepository) waitForActive(ctx context.Context, functionName string) error {
	if r.WaitTimeout <= 0 {
		return nil
	}
	waiter := lambda.NewFunctionActiveWaiter(r.Client, func(o *lambda.FunctionActiveWaiterOptions) {
		o.MinDelay, o.MaxDelay = clampDelays(o.MinDelay, o.MaxDelay, r.WaitTimeout)
	})
	waitErr := waiter.Wait(ctx, &lambda.GetFunctionConfigurationInput{FunctionName: aws.String(functionName)}, r.WaitTimeout)
	return r.finalCheck(ctx, functionName, waitErr)
}

func (r *LambdaRepository) waitForUpdated(ctx context.Context, functionName string) error {
	if r.WaitTimeout <= 0 {
		return nil
	}
	waiter := lambda.NewFunctionUpdatedWaiter(r.Client, func(o *lambda.FunctionUpdatedWaiterOptions) {
		o.MinDelay, o.MaxDelay = clampDelays(o.MinDelay, o.MaxDelay, r.WaitTimeout)
	})
	waitErr := waiter.Wait(ctx, &lambda.GetFunctionConfigurationInput{FunctionName: aws.String(functionName)}, r.WaitTimeout)
	return r.finalCheck(ctx, functionName, waitErr)
}

// finalCheck tolera timeout do waiter se a função não estiver em estado de falha.
func (r *LambdaRepository) finalCheck(ctx context.Context, functionName string, waitErr error) error {
	if waitErr == nil {
		return nil
	}

	out, err := r.Client.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{FunctionName: aws.String(functionName)})
	if err != nil {
		return mapError("GetFunctionConfiguration", errors.Join(waitErr, err))
	}
	if out.State == lambdatypes.StateFailed || out.LastUpdateStatus == lambdatypes.LastUpdateStatusFailed {
		return faults.NewTypedError(faults.ClientError,
			fmt.Sprintf("function %s entered a failed state: %s", functionName, aws.ToString(out.LastUpdateStatusReason)), waitErr)
	}

	log.G(ctx).WithError(waitErr).WithField("function", functionName).Warn("function wait failed but final check passed")
	return nil
}

// clampDelays ajusta os atrasos padrão do waiter para caberem em timeouts
// curtos; o SDK rejeita MinDelay maior que a duração máxima.
func clampDelays(minDelay, maxDelay, timeout time.Duration) (time.Duration, time.Duration) {
	if minDelay > timeout {
		minDelay = timeout
	}
	if maxDelay > timeout {
		maxDelay = timeout
	}
	return minDelay, maxDelay
}

func toSnapshot(out *lambda.GetFunctionOutput) types.RemoteSnapshot {
	snap := types.RemoteSnapshot{Exists: true, Raw: out}
	if out == nil || out.Configuration == nil {
		return snap
	}

	c := out.Configuration
	snap.Configuration = types.FunctionConfiguration{
		Role:        aws.ToString(c.Role),
		Handler:     aws.ToString(c.Handler),
		Description: aws.ToString(c.Description),
		Timeout:     aws.ToInt32(c.Timeout),
		MemorySize:  aws.ToInt32(c.MemorySize),
		Runtime:     string(c.Runtime),
		CodeSha256:  aws.ToString(c.CodeSha256),
		FunctionARN: aws.ToString(c.FunctionArn),
		Version:     aws.ToString(c.Version),
	}
	return snap
}

func functionCode(code types.CodeDecision) *lambdatypes.FunctionCode {
	switch code.Kind {
	case types.CodeUploadInline:
		return &lambdatypes.FunctionCode{ZipFile: code.ZipFile}
	case types.CodeReferenceObject:
		fc := &lambdatypes.FunctionCode{
			S3Bucket: aws.String(code.Bucket),
			S3Key:    aws.String(code.Key),
		}
		if code.Version != "" {
			fc.S3ObjectVersion = aws.String(code.Version)
		}
		return fc
	default:
		return nil
	}
}
