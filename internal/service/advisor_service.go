package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"yield-farm-api/internal/openai"
	"yield-farm-api/internal/strategy"
)

// ChatMessage одна реплика диалога с советником
type ChatMessage struct {
	Role    string `json:"role"` // user или assistant
	Content string `json:"content"`
}

const advisorPromptHeader = `You are an expert AI Strategy Advisor for a yield farming platform. Your role is to:
1. Help users understand their investment goals and risk tolerance
2. Recommend personalized yield farming strategies based on their profile
3. Explain complex DeFi concepts in simple terms
4. Provide insights on APY, risks, and pool selection`

const advisorPromptFooter = `Keep responses concise, friendly, and actionable. Focus on helping users make informed decisions.`

const assistantPrompt = `You are a knowledgeable AI assistant for a Yield Farming DeFi Platform. Your role is to help users understand yield farming concepts, navigate the platform, and make informed investment decisions.

Core concepts you explain: yield farming, APY vs APR, TVL, liquidity pools, impermanent loss, smart contract risk and slippage.

Platform sections: Dashboard (portfolio overview), Pools (browse and compare by APY, TVL and risk), Portfolio (active positions), Rewards (claim and history), Wallet (balances and transactions), Strategy Advisor (personalized recommendations).

Risk guidance: low risk pools are stablecoin pools on established protocols with high TVL (3-8% APY); medium risk covers major token pairs on proven protocols (8-20%); high risk covers new tokens and volatile pairs (20%+).

Be clear, concise, and educational. Explain concepts when users ask. Guide users to appropriate pages. If you lack specific information, direct them to the relevant section. Never use exclamation marks in responses. Use a professional, calm tone.`

var (
	markdownPattern    = regexp.MustCompile("\\*\\*|\\*|#{1,6} |`")
	doublePeriodsRegex = regexp.MustCompile(`\.{2,}`)
)

// Chat отправляет сообщение стратегическому советнику. Профиль пользователя
// и количество доступных пулов встраиваются в системный промпт.
func (s *FarmService) Chat(ctx context.Context, message string, history []ChatMessage, profile *strategy.Profile) (string, error) {
	pools, err := s.storage.ListActivePools(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	prompt := buildAdvisorPrompt(profile, len(pools))

	reply, err := s.complete(ctx, openai.Request{
		Messages:    buildMessages(prompt, history, message),
		Temperature: 0.7,
		MaxTokens:   500,
		TopP:        1,
	})
	if err != nil {
		return "", err
	}

	return stripMarkdown(reply), nil
}

// AssistantChat отправляет сообщение глобальному ассистенту платформы.
// Восклицательные знаки в ответе заменяются точками.
func (s *FarmService) AssistantChat(ctx context.Context, message string, history []ChatMessage) (string, error) {
	reply, err := s.complete(ctx, openai.Request{
		Messages:         buildMessages(assistantPrompt, history, message),
		Temperature:      0.6,
		MaxTokens:        350,
		TopP:             0.9,
		FrequencyPenalty: 0.4,
		PresencePenalty:  0.2,
	})
	if err != nil {
		return "", err
	}

	return softenExclamations(reply), nil
}

// GenerateStrategies строит детерминированные стратегии распределения
// по активным пулам под профиль пользователя
func (s *FarmService) GenerateStrategies(ctx context.Context, profile strategy.Profile) ([]strategy.Strategy, error) {
	if profile.InvestmentAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	pools, err := s.storage.ListActivePools(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatastore, err)
	}

	strategies := strategy.Generate(profile, pools)
	s.logger.Infof("Generated %d strategies for investment %.2f", len(strategies), profile.InvestmentAmount)
	return strategies, nil
}

func (s *FarmService) complete(ctx context.Context, req openai.Request) (string, error) {
	reply, err := s.advisorClient.Complete(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, openai.ErrUnauthorized):
			return "", ErrAdvisorAuth
		case errors.Is(err, openai.ErrRateLimited):
			return "", ErrAdvisorRateLimited
		case errors.Is(err, openai.ErrUnavailable):
			return "", ErrAdvisorUnavailable
		default:
			s.logger.Errorf("Advisor request failed: %v", err)
			return "", ErrAdvisorUnavailable
		}
	}

	if reply == "" {
		reply = "I apologize, but I could not generate a response. Please try again."
	}

	return reply, nil
}

func buildAdvisorPrompt(profile *strategy.Profile, poolCount int) string {
	var b strings.Builder
	b.WriteString(advisorPromptHeader)

	if profile != nil {
		b.WriteString(fmt.Sprintf("\n\nUser Profile:\n- Investment Amount: $%.2f\n- Expected Returns: %.1f%%\n- Target APY: %.1f%%",
			profile.InvestmentAmount, profile.ExpectedReturns, profile.TargetAPY))
	}

	if poolCount > 0 {
		b.WriteString(fmt.Sprintf("\n\nAvailable Pools: %d pools with varying APYs and risk levels.", poolCount))
	}

	b.WriteString("\n\n")
	b.WriteString(advisorPromptFooter)
	return b.String()
}

func buildMessages(systemPrompt string, history []ChatMessage, message string) []openai.Message {
	messages := make([]openai.Message, 0, len(history)+2)
	messages = append(messages, openai.Message{Role: "system", Content: systemPrompt})
	for _, msg := range history {
		messages = append(messages, openai.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, openai.Message{Role: "user", Content: message})
	return messages
}

func stripMarkdown(text string) string {
	return strings.TrimSpace(markdownPattern.ReplaceAllString(text, ""))
}

func softenExclamations(text string) string {
	text = strings.ReplaceAll(text, "!", ".")
	text = doublePeriodsRegex.ReplaceAllString(text, ".")
	return strings.TrimSpace(text)
}
