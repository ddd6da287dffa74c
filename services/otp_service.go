package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-redis/redis/v8"
)

const otpTTL = 5 * time.Minute

var ErrOTPMismatch = errors.New("invalid or expired OTP")

// OTPService stores one-time phone verification codes in Redis under
// otp:<phone> with a 5-minute expiry.
type OTPService struct {
	rdb *redis.Client
}

func NewOTPService(redisURL string) (*OTPService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &OTPService{rdb: redis.NewClient(opts)}, nil
}

// Generate creates a 6-digit code for the phone number and stores it.
func (s *OTPService) Generate(ctx context.Context, phone string) (string, error) {
	otp := fmt.Sprintf("%06d", rand.Intn(1000000))
	if err := s.rdb.Set(ctx, otpKey(phone), otp, otpTTL).Err(); err != nil {
		return "", err
	}
	return otp, nil
}

// Verify checks the submitted code and deletes it on success.
func (s *OTPService) Verify(ctx context.Context, phone, otp string) error {
	stored, err := s.rdb.Get(ctx, otpKey(phone)).Result()
	if err == redis.Nil {
		return ErrOTPMismatch
	}
	if err != nil {
		return err
	}
	if stored != otp {
		return ErrOTPMismatch
	}
	return s.rdb.Del(ctx, otpKey(phone)).Err()
}

func otpKey(phone string) string {
	return "otp:" + phone
}
