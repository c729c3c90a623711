package quiz

import "iq-report-service/internal/domain"

// DefaultBank returns the fixed 35-question bank the test is scored
// against. Prompts are in Portuguese because that is what the product
// ships; scoring only ever compares the Answer strings.
func DefaultBank() domain.QuestionBank {
	return domain.QuestionBank{Questions: []domain.Question{
		{Index: 1, Prompt: "Qual número completa a sequência: 2, 4, 8, 16, ?", Options: []string{"24", "32", "20", "28"}, Answer: "32"},
		{Index: 2, Prompt: "Se todos os Bloops são Razzies e todos os Razzies são Lazzies, então todos os Bloops são necessariamente Lazzies?", Options: []string{"Sim", "Não", "Impossível determinar", "Depende"}, Answer: "Sim"},
		{Index: 3, Prompt: "Qual palavra não pertence ao grupo: Cachorro, Gato, Leão, Mesa?", Options: []string{"Cachorro", "Gato", "Leão", "Mesa"}, Answer: "Mesa"},
		{Index: 4, Prompt: "Se 5 máquinas fazem 5 produtos em 5 minutos, quanto tempo levam 100 máquinas para fazer 100 produtos?", Options: []string{"5 minutos", "100 minutos", "20 minutos", "10 minutos"}, Answer: "5 minutos"},
		{Index: 5, Prompt: "Qual é o próximo número na sequência: 1, 1, 2, 3, 5, 8, ?", Options: []string{"10", "11", "13", "15"}, Answer: "13"},
		{Index: 6, Prompt: "Analógico é para Digital assim como Livro é para ?", Options: []string{"Papel", "E-book", "Biblioteca", "Leitura"}, Answer: "E-book"},
		{Index: 7, Prompt: "Se você reorganizar as letras 'CIFAIPC', você obtém o nome de um(a):", Options: []string{"Cidade", "Animal", "Oceano", "País"}, Answer: "Oceano"},
		{Index: 8, Prompt: "Qual número é diferente dos outros: 3, 5, 11, 14, 17, 21?", Options: []string{"3", "5", "14", "17"}, Answer: "14"},
		{Index: 9, Prompt: "Qual é o próximo número: 100, 96, 92, 88, ?", Options: []string{"84", "82", "86", "80"}, Answer: "84"},
		{Index: 10, Prompt: "Se A = 1, B = 2, C = 3, qual é o valor de CAB?", Options: []string{"312", "321", "123", "213"}, Answer: "312"},
		{Index: 11, Prompt: "Qual forma completa o padrão: Círculo, Quadrado, Triângulo, Círculo, Quadrado, ?", Options: []string{"Círculo", "Quadrado", "Triângulo", "Retângulo"}, Answer: "Triângulo"},
		{Index: 12, Prompt: "Se João é mais alto que Maria e Maria é mais alta que Pedro, quem é o mais baixo?", Options: []string{"João", "Maria", "Pedro", "Impossível determinar"}, Answer: "Pedro"},
		{Index: 13, Prompt: "Qual número vem a seguir: 2, 6, 12, 20, 30, ?", Options: []string{"40", "42", "38", "44"}, Answer: "42"},
		{Index: 14, Prompt: "Médico está para Hospital assim como Professor está para ?", Options: []string{"Livro", "Escola", "Aluno", "Ensino"}, Answer: "Escola"},
		{Index: 15, Prompt: "Quantos triângulos existem em um pentágono dividido por todas as suas diagonais?", Options: []string{"5", "10", "15", "20"}, Answer: "10"},
		{Index: 16, Prompt: "Se CASA = 3141 e SACA = 1431, quanto é ASSA?", Options: []string{"4114", "1441", "4141", "1414"}, Answer: "4114"},
		{Index: 17, Prompt: "Qual é o oposto de EXPANDIR?", Options: []string{"Crescer", "Contrair", "Aumentar", "Ampliar"}, Answer: "Contrair"},
		{Index: 18, Prompt: "Complete: 1, 4, 9, 16, 25, ?", Options: []string{"30", "35", "36", "40"}, Answer: "36"},
		{Index: 19, Prompt: "Se todos os X são Y e alguns Y são Z, então:", Options: []string{"Todos X são Z", "Alguns X são Z", "Nenhum X é Z", "Impossível determinar"}, Answer: "Impossível determinar"},
		{Index: 20, Prompt: "Qual palavra está mais relacionada com OCEANO?", Options: []string{"Montanha", "Deserto", "Mar", "Floresta"}, Answer: "Mar"},
		{Index: 21, Prompt: "Se 3 gatos pegam 3 ratos em 3 minutos, quantos gatos são necessários para pegar 100 ratos em 100 minutos?", Options: []string{"3", "33", "100", "300"}, Answer: "3"},
		{Index: 22, Prompt: "Qual letra completa a sequência: A, C, F, J, ?", Options: []string{"M", "N", "O", "P"}, Answer: "O"},
		{Index: 23, Prompt: "Se você tem 6 maçãs e tira 4, quantas você tem?", Options: []string{"2", "4", "6", "10"}, Answer: "4"},
		{Index: 24, Prompt: "Qual número não pertence: 2, 3, 5, 7, 9, 11?", Options: []string{"2", "3", "9", "11"}, Answer: "9"},
		{Index: 25, Prompt: "Complete a analogia: Dia está para Noite assim como Verão está para ?", Options: []string{"Primavera", "Outono", "Inverno", "Calor"}, Answer: "Inverno"},
		{Index: 26, Prompt: "Qual é o próximo na sequência: Z, Y, X, W, ?", Options: []string{"V", "U", "T", "S"}, Answer: "V"},
		{Index: 27, Prompt: "Se um relógio marca 3:15, qual é o ângulo entre os ponteiros?", Options: []string{"0°", "7.5°", "15°", "22.5°"}, Answer: "7.5°"},
		{Index: 28, Prompt: "Quantos cubos de 1cm cabem em um cubo de 3cm?", Options: []string{"9", "18", "27", "36"}, Answer: "27"},
		{Index: 29, Prompt: "Qual palavra não se relaciona: Alegre, Feliz, Contente, Triste?", Options: []string{"Alegre", "Feliz", "Contente", "Triste"}, Answer: "Triste"},
		{Index: 30, Prompt: "Se A > B e B > C, então:", Options: []string{"A = C", "A < C", "A > C", "Impossível determinar"}, Answer: "A > C"},
		{Index: 31, Prompt: "Complete: 3, 6, 11, 18, 27, ?", Options: []string{"36", "38", "40", "42"}, Answer: "38"},
		{Index: 32, Prompt: "Qual é o número que falta: 2, 5, 10, 17, ?, 37", Options: []string{"24", "26", "28", "30"}, Answer: "26"},
		{Index: 33, Prompt: "Se ROMA tem 4 letras e AMOR tem 4 letras, quantas letras tem RAMO?", Options: []string{"3", "4", "5", "6"}, Answer: "4"},
		{Index: 34, Prompt: "Qual figura geométrica tem exatamente 5 lados?", Options: []string{"Quadrado", "Pentágono", "Hexágono", "Triângulo"}, Answer: "Pentágono"},
		{Index: 35, Prompt: "Complete a sequência lógica: 1, 2, 4, 7, 11, 16, ?", Options: []string{"20", "21", "22", "23"}, Answer: "22"},
	}}
}
